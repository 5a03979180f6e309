package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/startpage/internal/httpserver/deps"
	"github.com/MrSnakeDoc/startpage/internal/httpserver/mw"
	"github.com/MrSnakeDoc/startpage/internal/logger"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login opens a session. With auth disabled it answers 202 and sets no
// cookie, which tells the frontend there is nothing to log into.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		res, err := d.Storage.Login(req.Username, req.Password)
		if err != nil {
			if statusFor(err) == http.StatusUnauthorized {
				d.Logger.Warn("login rejected",
					logger.String("username", req.Username),
					logger.String("remote_ip", r.RemoteAddr))
			}
			writeError(w, r, d.Logger, err)
			return
		}
		if !res.Enabled {
			w.WriteHeader(http.StatusAccepted)
			return
		}

		http.SetCookie(w, mw.SessionCookie(res.SessionID, res.MaxAge))
		w.WriteHeader(http.StatusOK)
	}
}

// Logout deletes the session named by the cookie, if any.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(mw.SessionCookieName); err == nil {
			id = c.Value
		}
		if err := d.Storage.Logout(id); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
