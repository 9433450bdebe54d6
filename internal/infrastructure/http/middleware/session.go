package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"github.com/DELTAJoSch/Horus/internal/domain"
)

const sessionName = "horus_session"

// SessionManager issues and resolves cookie sessions. The cookie carries
// the principal's name, email and role; it is the only session state.
type SessionManager struct {
	store *sessions.CookieStore
}

// NewSessionManager creates a cookie-backed session manager. Cookies are
// persistent for ttl, HTTP-only, and secure outside development.
func NewSessionManager(secret []byte, ttl time.Duration, isDevelopment bool) *SessionManager {
	store := sessions.NewCookieStore(secret)
	store.MaxAge(int(ttl / time.Second))
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = !isDevelopment
	store.Options.SameSite = http.SameSiteLaxMode
	return &SessionManager{store: store}
}

// Establish binds a session to the principal and writes the cookie.
func (m *SessionManager) Establish(w http.ResponseWriter, r *http.Request, p Principal) error {
	sess, _ := m.store.Get(r, sessionName)
	sess.Values["name"] = p.Name
	sess.Values["email"] = p.Email
	sess.Values["role"] = string(p.Role)
	return sess.Save(r, w)
}

// Clear expires the session cookie.
func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, sessionName)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// Principal resolves the request's session into a principal. A session
// without a name does not authenticate.
func (m *SessionManager) Principal(r *http.Request) (Principal, bool) {
	sess, err := m.store.Get(r, sessionName)
	if err != nil || sess.IsNew {
		return Principal{}, false
	}
	name, _ := sess.Values["name"].(string)
	if name == "" {
		return Principal{}, false
	}
	email, _ := sess.Values["email"].(string)
	roleStr, _ := sess.Values["role"].(string)
	role, err := domain.ParseRole(roleStr)
	if err != nil {
		return Principal{}, false
	}
	return Principal{Name: name, Email: email, Role: role}, true
}

// Require rejects unauthenticated requests with 401 and puts the principal
// into the request context for handlers.
func (m *SessionManager) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := m.Principal(r)
		if !ok {
			writeErr(w, http.StatusUnauthorized, "not logged in")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}
