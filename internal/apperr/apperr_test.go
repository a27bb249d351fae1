package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOfWrapped(t *testing.T) {
	base := NotFoundf("Project not found")
	wrapped := fmt.Errorf("failed to load task: %w", base)

	kind, ok := KindOf(wrapped)
	require.True(t, ok)
	require.Equal(t, NotFound, kind)
	require.True(t, Is(wrapped, NotFound))
	require.False(t, Is(wrapped, Forbidden))

	_, ok = KindOf(errors.New("boom"))
	require.False(t, ok)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{err: NotFoundf("x"), expected: http.StatusNotFound},
		{err: Forbiddenf("x"), expected: http.StatusForbidden},
		{err: BadRequestf("x"), expected: http.StatusBadRequest},
		{err: Validationf("x"), expected: http.StatusBadRequest},
		{err: Conflictf("x"), expected: http.StatusConflict},
		{err: errors.New("x"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error()+fmt.Sprint(tt.expected), func(t *testing.T) {
			require.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: Conflict, Msg: "duplicate", Err: errors.New("unique violation")}
	require.Equal(t, "duplicate: unique violation", err.Error())
	require.Equal(t, "duplicate", Message(err))
	require.Equal(t, "Internal server error", Message(errors.New("pq: connection refused")))
	require.Equal(t, "<NOT_FOUND>", (&Error{Kind: NotFound}).Error())
}
