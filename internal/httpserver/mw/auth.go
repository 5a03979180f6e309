package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/startpage/internal/logger"
	"github.com/MrSnakeDoc/startpage/internal/storage"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "session_id"

// Authenticator validates (and refreshes) a session token.
type Authenticator interface {
	Authenticate(sessionID string) (storage.AuthResult, error)
}

// SessionCookie builds the session cookie sent on login and on every
// admitted request.
func SessionCookie(id string, maxAge int64) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(maxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Auth gates the wrapped routes behind a valid session when auth is
// enabled. Admitted requests get their cookie re-issued so the browser's
// expiry slides along with the server's.
func Auth(gate Authenticator, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(SessionCookieName); err == nil {
				id = c.Value
			}

			res, err := gate.Authenticate(id)
			if err != nil {
				log.Error("session check failed",
					logger.String("path", r.URL.Path),
					logger.Error(err))
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if !res.Enabled {
				next.ServeHTTP(w, r)
				return
			}
			if !res.Admitted {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			http.SetCookie(w, SessionCookie(id, res.MaxAge))
			next.ServeHTTP(w, r)
		})
	}
}
