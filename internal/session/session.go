// Package session holds per-browser authentication state and its stores.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is one browser's authenticated context, keyed by the session
// cookie. Transient fields exist only between the start of a redirect login
// and its completion.
type Session struct {
	ID string `json:"id"`

	UserID       string `json:"user_id,omitempty"`
	Email        string `json:"email,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`

	// Pending authorization request (transient, single-use).
	OAuthState    string    `json:"oauth_state,omitempty"`
	RedirectURI   string    `json:"redirect_uri,omitempty"`
	StateIssuedAt time.Time `json:"state_issued_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// New creates an empty, anonymous session.
func New() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
}

// Authenticated reports whether the session holds an identity.
func (s *Session) Authenticated() bool {
	return s.UserID != ""
}

// BeginAuthorization records a pending redirect-flow attempt. Any previous
// pending attempt is overwritten; the old state can no longer complete.
func (s *Session) BeginAuthorization(state, redirectURI string) {
	s.OAuthState = state
	s.RedirectURI = redirectURI
	s.StateIssuedAt = time.Now()
}

// PendingState returns the stored state and redirect URI, or ok=false when
// no authorization request is pending.
func (s *Session) PendingState() (state, redirectURI string, ok bool) {
	if s.OAuthState == "" {
		return "", "", false
	}
	return s.OAuthState, s.RedirectURI, true
}

// StateExpired reports whether the pending request outlived ttl.
func (s *Session) StateExpired(ttl time.Duration) bool {
	return s.OAuthState != "" && time.Since(s.StateIssuedAt) > ttl
}

// ClearAuthorization purges the pending authorization request. Called on
// every completion, successful or not; states are single-use.
func (s *Session) ClearAuthorization() {
	s.OAuthState = ""
	s.RedirectURI = ""
	s.StateIssuedAt = time.Time{}
}

// Authenticate populates the identity and tokens in one step and purges any
// pending authorization request. The session never holds a partial identity.
func (s *Session) Authenticate(userID, email, idToken, accessToken, refreshToken string) {
	s.UserID = userID
	s.Email = email
	s.IDToken = idToken
	s.AccessToken = accessToken
	s.RefreshToken = refreshToken
	s.ClearAuthorization()
}

// Clear resets the session to anonymous, dropping identity, tokens, and any
// transient flow state. The session ID is retained.
func (s *Session) Clear() {
	s.UserID = ""
	s.Email = ""
	s.IDToken = ""
	s.AccessToken = ""
	s.RefreshToken = ""
	s.ClearAuthorization()
}
