package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wolfeidau/teamhub/internal/auth"
)

// TokenCmd mints an access token for local development.
type TokenCmd struct {
	UserID   string        `help:"Subject user ID" required:""`
	Email    string        `help:"Email claim" default:""`
	OrgID    string        `help:"Organization the token is scoped to" default:""`
	Issuer   string        `help:"Token issuer" default:"teamhub-api" env:"TEAMHUB_JWT_ISSUER"`
	TTL      time.Duration `help:"Token lifetime" default:"1h"`
	Secret   string        `help:"HMAC signing secret" env:"JWT_SECRET"`
	Unsigned bool          `help:"Emit a legacy unsigned token instead of a signed one" default:"false"`
}

func (t *TokenCmd) Validate() error {
	if t.Secret == "" && !t.Unsigned {
		return errors.New("signing secret is required (--secret or JWT_SECRET), or pass --unsigned")
	}
	return nil
}

func (t *TokenCmd) Run(ctx context.Context) error {
	id := auth.Identity{UserID: t.UserID, Email: t.Email, OrgID: t.OrgID}

	var (
		token string
		err   error
	)
	if t.Unsigned {
		token, err = auth.IssueUnsignedToken(t.Issuer, id, t.TTL)
	} else {
		token, err = auth.IssueToken([]byte(t.Secret), t.Issuer, id, t.TTL)
	}
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	fmt.Println(token)
	return nil
}
