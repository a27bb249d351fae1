package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultIssuer is the issuer stamped on and required of teamhub tokens.
const DefaultIssuer = "teamhub-api"

// Claims are the JWT claims carried by a teamhub access token.
// The subject is the user id.
type Claims struct {
	Email          string `json:"email,omitempty"`
	OrganizationID string `json:"organizationId,omitempty"`
	jwt.RegisteredClaims
}

func newClaims(issuer string, id Identity, ttl time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		Email:          id.Email,
		OrganizationID: id.OrgID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// IssueToken creates an HS256 signed JWT for the given identity.
func IssueToken(secret []byte, issuer string, id Identity, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, newClaims(issuer, id, ttl))
	return token.SignedString(secret)
}

// IssueUnsignedToken creates an alg "none" token in the legacy format.
// Verifiers only accept these when unsigned tokens are explicitly allowed.
func IssueUnsignedToken(issuer string, id Identity, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, newClaims(issuer, id, ttl))
	return token.SignedString(jwt.UnsafeAllowNoneSignatureType)
}
