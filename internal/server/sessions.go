package server

import (
	"context"
	"net/http"

	"github.com/jonathan/resume-builder/internal/session"
)

type contextKey string

const sessionContextKey contextKey = "session"

// sessionFrom returns the session the guard attached to the request.
// Only valid inside handlers wrapped by requireSession.
func sessionFrom(r *http.Request) *session.Session {
	sess, _ := r.Context().Value(sessionContextKey).(*session.Session)
	return sess
}

// loadSession resolves the request's session cookie against the store.
// Returns nil when there is no cookie or the session expired.
func (s *Server) loadSession(r *http.Request) *session.Session {
	cookie, err := r.Cookie(s.authCfg.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	sess, err := s.sessions.Get(r.Context(), cookie.Value)
	if err != nil {
		return nil
	}
	return sess
}

// saveSession persists the session and refreshes the browser cookie.
func (s *Server) saveSession(w http.ResponseWriter, r *http.Request, sess *session.Session) error {
	if err := s.sessions.Put(r.Context(), sess, s.authCfg.SessionTTL); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.authCfg.CookieName,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(s.authCfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.authCfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// dropSession removes the session from the store and expires the cookie.
func (s *Server) dropSession(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if sess != nil {
		_ = s.sessions.Delete(r.Context(), sess.ID)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.authCfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.authCfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// requireSession guards a handler: anonymous requests are redirected to the
// login page before the handler runs. The check is session presence only;
// tokens are not re-verified per request.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.loadSession(r)
		if sess == nil || !sess.Authenticated() {
			http.Redirect(w, r, "/login-page", http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
