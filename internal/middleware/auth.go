package middleware

import (
	"net/http"

	"github.com/hcardin/mesada/internal/auth"
	"github.com/hcardin/mesada/internal/policy"
	"github.com/hcardin/mesada/internal/store"
)

// SessionCookieName is the cookie the login handler sets and RequireAuth reads.
const SessionCookieName = "mesada_session"

// RequireAuth resolves the session cookie to a user and populates the request
// auth context. Requests without a live session get 401; this is a JSON API,
// there is no login page to redirect to.
func RequireAuth(sessions *store.SessionStore, users *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			sess, err := sessions.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				unauthorized(w)
				return
			}

			user, err := users.GetByID(sess.UserID)
			if err != nil || user == nil {
				unauthorized(w)
				return
			}

			ac := auth.AuthContext{
				UserID:    user.ID,
				Roles:     user.Roles,
				SessionID: sess.ID,
			}

			next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), ac)))
		})
	}
}

// RequireValidator gates a handler on the validator role. It assumes
// RequireAuth already ran.
func RequireValidator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !policy.CanValidate(auth.Roles(r.Context())) {
			forbidden(w, "validator role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePage gates a handler on the policy table's page entry. It assumes
// RequireAuth already ran.
func RequirePage(page policy.Page) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !policy.Allowed(auth.Roles(r.Context()), page) {
				forbidden(w, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"authentication required"}`))
}

func forbidden(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
