package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/calebquinn/packlist/internal/auth"
	"github.com/calebquinn/packlist/internal/store"
)

// SessionCookieName is the bearer-token cookie validated on every request.
const SessionCookieName = "sb-access-token"

// RequireAuth validates the access token and populates the auth context.
// When jwtSecret is set the token is verified as an HS256 JWT (hosted-auth
// compatibility); otherwise it is looked up in the sessions table. The token
// may arrive either as the sb-access-token cookie or an Authorization:
// Bearer header.
func RequireAuth(sessionStore *store.SessionStore, userStore *store.UserStore, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, "missing access token")
				return
			}

			var ac auth.AuthContext
			if jwtSecret != "" {
				userID, email, err := auth.VerifyAccessToken(token, jwtSecret)
				if err != nil {
					unauthorized(w, "invalid access token")
					return
				}
				ac = auth.AuthContext{UserID: userID, Email: email}
			} else {
				sess, err := sessionStore.GetByToken(token)
				if err != nil || sess == nil {
					unauthorized(w, "invalid or expired session")
					return
				}
				ac = auth.AuthContext{UserID: sess.UserID}
			}

			user, err := userStore.GetByID(ac.UserID)
			if err != nil || user == nil {
				unauthorized(w, "unknown user")
				return
			}
			ac.Email = user.Email

			next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), ac)))
		})
	}
}

func bearerToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
