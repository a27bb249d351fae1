package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// APIKeyPrefix marks a bearer credential as an API key rather than a JWT.
const APIKeyPrefix = "thub_"

// APIKeyAuthenticator resolves an API key secret to the identity it acts as.
type APIKeyAuthenticator interface {
	Authenticate(ctx context.Context, secret string) (*Identity, error)
}

// DualAuthMiddleware creates an HTTP middleware that supports both JWT and API key authentication.
// API keys are read from the X-API-Key header, or from the Authorization header when the
// bearer value carries the API key prefix. Anything else in the Authorization header is a JWT.
func DualAuthMiddleware(
	jwtVerifier *JWTVerifier,
	apiKeys APIKeyAuthenticator,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			secret := r.Header.Get("X-API-Key")
			if bearer := extractBearerToken(r); secret == "" && strings.HasPrefix(bearer, APIKeyPrefix) {
				secret = bearer
			}

			if secret != "" {
				if apiKeys == nil {
					writeUnauthorized(w, "API keys are not accepted")
					return
				}

				id, err := apiKeys.Authenticate(ctx, secret)
				if err != nil {
					log.Debug().Err(err).Msg("Dual auth: API key verification failed")
					writeUnauthorized(w, "Invalid API key")
					return
				}

				log.Debug().
					Str("user_id", id.UserID).
					Str("org_id", id.OrgID).
					Msg("Dual auth: API key authenticated")

				next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, id)))
				return
			}

			id, err := jwtVerifier.VerifyRequest(r)
			if err != nil {
				log.Debug().Err(err).Msg("Dual auth: JWT verification failed")
				writeUnauthorized(w, "Invalid or missing authentication token")
				return
			}

			log.Debug().
				Str("user_id", id.UserID).
				Str("org_id", id.OrgID).
				Msg("Dual auth: JWT authenticated")

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, id)))
		})
	}
}
