package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/jonathan/resume-builder/internal/auth"
	"github.com/jonathan/resume-builder/internal/session"
)

// handleLogin starts the redirect-based login: a fresh state token is bound
// to the browser's session and the browser is sent to the provider's
// authorize endpoint.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess := s.loadSession(r)
	if sess == nil {
		sess = session.New()
	}

	state, err := auth.NewState()
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to start login")
		return
	}

	sess.BeginAuthorization(state, s.authCfg.RedirectURI)
	if err := s.saveSession(w, r, sess); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to persist session")
		return
	}

	http.Redirect(w, r, s.flow.AuthorizeURL(state), http.StatusFound)
}

// handleCallback completes the redirect flow. The state in the query must
// match the pending one bound to the session; the code is then exchanged for
// tokens and the identity is extracted from the ID token. Every completion,
// successful or not, consumes the pending state.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	sess := s.loadSession(r)
	if sess == nil {
		s.authErrorResponse(w, &auth.ErrMissingState{})
		return
	}

	pendingState, redirectURI, pending := sess.PendingState()
	if !pending {
		s.authErrorResponse(w, &auth.ErrMissingState{})
		return
	}

	query := r.URL.Query()

	// Provider-reported failure (user denied, misconfiguration, ...).
	if errCode := query.Get("error"); errCode != "" {
		s.finishAttempt(w, r, sess)
		s.authErrorResponse(w, &auth.ErrProviderCallback{
			Code:        errCode,
			Description: query.Get("error_description"),
		})
		return
	}

	// A state that does not match the pending one is not a completion of
	// this session's flow; the pending request stays intact.
	state := query.Get("state")
	if state == "" {
		s.authErrorResponse(w, &auth.ErrMissingState{})
		return
	}
	if state != pendingState {
		s.authErrorResponse(w, &auth.ErrStateMismatch{})
		return
	}

	if sess.StateExpired(s.authCfg.StateTTL) {
		s.finishAttempt(w, r, sess)
		s.authErrorResponse(w, &auth.ErrStateExpired{})
		return
	}

	code := query.Get("code")
	if code == "" {
		s.finishAttempt(w, r, sess)
		s.authErrorResponse(w, &auth.ErrMissingCode{})
		return
	}

	tokens, err := s.flow.ExchangeCode(r.Context(), code, redirectURI)
	if err != nil {
		s.finishAttempt(w, r, sess)
		s.authErrorResponse(w, err)
		return
	}

	identity, err := s.flow.Identity(r.Context(), tokens.IDToken)
	if err != nil {
		s.finishAttempt(w, r, sess)
		s.authErrorResponse(w, &auth.ErrTokenDecode{Cause: err})
		return
	}

	if _, err := s.db.UpsertUser(r.Context(), identity.UserID, identity.Email); err != nil {
		log.Printf("[auth] Failed to record login for %s: %v", identity.UserID, err)
	}

	sess.Authenticate(identity.UserID, identity.Email, tokens.IDToken, tokens.AccessToken, tokens.RefreshToken)
	if err := s.saveSession(w, r, sess); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to persist session")
		return
	}

	http.Redirect(w, r, "/resume-maker", http.StatusFound)
}

// finishAttempt consumes the session's pending authorization request.
func (s *Server) finishAttempt(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	sess.ClearAuthorization()
	if err := s.saveSession(w, r, sess); err != nil {
		log.Printf("[auth] Failed to persist session %s: %v", sess.ID, err)
	}
}

// customLoginRequest is the direct email/password login payload.
type customLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type customLoginResponse struct {
	Success     bool   `json:"success"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

// handleCustomLogin authenticates email/password directly against the
// identity provider's password grant. Failure modes map to distinct status
// codes so the form can react to each.
func (s *Server) handleCustomLogin(w http.ResponseWriter, r *http.Request) {
	var req customLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.loginFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.loginFailure(w, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := s.creds.PasswordGrant(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Printf("[auth] Password grant transport failure: %v", err)
		s.loginFailure(w, http.StatusInternalServerError, "authentication service unavailable")
		return
	}

	switch result.Outcome {
	case auth.OutcomeSuccess:
		// fall through below

	case auth.OutcomeChallenge:
		s.loginFailure(w, auth.HTTPStatus(&auth.ErrChallengeRequired{Challenge: result.ChallengeName}),
			"additional authentication steps are required")
		return
	case auth.OutcomeNotAuthorized:
		s.loginFailure(w, auth.HTTPStatus(&auth.ErrNotAuthorized{}), "incorrect username or password")
		return
	case auth.OutcomeUserNotFound:
		s.loginFailure(w, auth.HTTPStatus(&auth.ErrUserNotFound{Email: req.Email}), "user does not exist")
		return
	case auth.OutcomeUserNotConfirmed:
		s.loginFailure(w, auth.HTTPStatus(&auth.ErrUserNotConfirmed{}), "user is not confirmed")
		return
	default:
		if result.Cause != nil {
			log.Printf("[auth] Unclassified provider error: %v", result.Cause)
		}
		s.loginFailure(w, http.StatusInternalServerError, "authentication failed")
		return
	}

	identity, err := s.flow.Identity(r.Context(), result.Tokens.IDToken)
	if err != nil {
		s.loginFailure(w, http.StatusBadRequest, "failed to decode identity token")
		return
	}

	if _, err := s.db.UpsertUser(r.Context(), identity.UserID, identity.Email); err != nil {
		log.Printf("[auth] Failed to record login for %s: %v", identity.UserID, err)
	}

	sess := s.loadSession(r)
	if sess == nil {
		sess = session.New()
	}
	sess.Authenticate(identity.UserID, identity.Email,
		result.Tokens.IDToken, result.Tokens.AccessToken, result.Tokens.RefreshToken)
	if err := s.saveSession(w, r, sess); err != nil {
		s.loginFailure(w, http.StatusInternalServerError, "failed to persist session")
		return
	}

	s.jsonResponse(w, http.StatusOK, customLoginResponse{
		Success:     true,
		RedirectURL: "/resume-maker",
	})
}

// loginFailure writes the custom-login error shape.
func (s *Server) loginFailure(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, customLoginResponse{Success: false, Error: message})
}

// handleLogout drops the server-side session and expires the cookie. Always
// redirects, even when there was no session to clear.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.dropSession(w, r, s.loadSession(r))
	http.Redirect(w, r, s.authCfg.PostLogoutRedirectURI, http.StatusFound)
}

// authErrorResponse maps an auth error onto its HTTP status.
func (s *Server) authErrorResponse(w http.ResponseWriter, err error) {
	s.errorResponse(w, auth.HTTPStatus(err), err.Error())
}
