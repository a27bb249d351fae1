package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated caller resolved from a token or API key.
type Identity struct {
	UserID string
	Email  string
	OrgID  string
}

type contextKey int

const (
	identityContextKey contextKey = iota
)

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext extracts the authenticated identity from the request context.
// Returns nil if no identity is present (unauthenticated request).
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey).(*Identity)
	return id
}

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrMissingSub   = errors.New("token has no subject")
)

// JWTVerifier validates HS256 access tokens.
type JWTVerifier struct {
	secret        []byte
	issuer        string
	allowUnsigned bool
}

// NewJWTVerifier creates a verifier. When allowUnsigned is set, legacy alg "none"
// tokens are accepted without a signature.
func NewJWTVerifier(secret []byte, issuer string, allowUnsigned bool) *JWTVerifier {
	return &JWTVerifier{
		secret:        secret,
		issuer:        issuer,
		allowUnsigned: allowUnsigned,
	}
}

// Verify parses and validates tokenString, returning the identity it asserts.
func (v *JWTVerifier) Verify(tokenString string) (*Identity, error) {
	methods := []string{jwt.SigningMethodHS256.Alg()}
	if v.allowUnsigned {
		methods = append(methods, jwt.SigningMethodNone.Alg())
		// legacy clients omit the trailing separator
		if strings.Count(tokenString, ".") == 1 {
			tokenString += "."
		}
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			return v.secret, nil
		default:
			if token.Method == jwt.SigningMethodNone && v.allowUnsigned {
				return jwt.UnsafeAllowNoneSignatureType, nil
			}
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
	}, jwt.WithValidMethods(methods), jwt.WithIssuer(v.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}

	if claims.Subject == "" {
		return nil, ErrMissingSub
	}

	return &Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		OrgID:  claims.OrganizationID,
	}, nil
}

// VerifyRequest verifies the bearer token on r.
func (v *JWTVerifier) VerifyRequest(r *http.Request) (*Identity, error) {
	tokenString := extractBearerToken(r)
	if tokenString == "" {
		return nil, ErrMissingToken
	}
	return v.Verify(tokenString)
}

// extractBearerToken extracts the JWT from the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return parts[1]
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":      "UNAUTHORIZED",
		"message":    message,
		"statusCode": http.StatusUnauthorized,
	})
}
