package commands

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenCmdValidate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     TokenCmd
		wantErr bool
	}{
		{name: "signed", cmd: TokenCmd{UserID: "u1", Secret: "s"}},
		{name: "unsigned", cmd: TokenCmd{UserID: "u1", Unsigned: true}},
		{name: "no secret", cmd: TokenCmd{UserID: "u1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
