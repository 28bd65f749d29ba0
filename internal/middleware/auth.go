package middleware

import (
	"net/http"
	"strings"

	"github.com/studysphere/backend/internal/apperr"
	"github.com/studysphere/backend/internal/logger"
)

// TokenVerifier turns a bearer token into a user id.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

var (
	ErrNoToken      = apperr.Unauthorized("No token provided")
	ErrInvalidToken = apperr.Unauthorized("Invalid token")
)

type Auth struct {
	log      *logger.Logger
	verifier TokenVerifier
}

func NewAuth(log *logger.Logger, verifier TokenVerifier) *Auth {
	return &Auth{log: log.With("middleware", "Auth"), verifier: verifier}
}

// Require rejects requests without a valid bearer token and stores the user id on the context.
func (a *Auth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			apperr.Write(w, a.log, ErrNoToken)
			return
		}

		userID, err := a.verifier.Verify(token)
		if err != nil {
			if ae := apperr.From(err); ae.Kind == apperr.KindMisconfigured {
				apperr.Write(w, a.log, ae)
				return
			}
			apperr.Write(w, a.log, ErrInvalidToken.Wrap(err))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
