package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jonathan/resume-builder/internal/config"
)

// Flow drives the redirect-based authorization-code login.
type Flow struct {
	cfg        *config.AuthConfig
	verifier   TokenVerifier
	httpClient *http.Client

	// tokenURL overrides the provider token endpoint; used by tests.
	tokenURL string
}

// NewFlow creates a flow controller for the configured provider.
func NewFlow(cfg *config.AuthConfig, verifier TokenVerifier) *Flow {
	return &Flow{
		cfg:        cfg,
		verifier:   verifier,
		httpClient: &http.Client{Timeout: exchangeTimeout},
		tokenURL:   strings.TrimRight(cfg.Domain, "/") + "/oauth2/token",
	}
}

// NewState generates a cryptographically random, URL-safe state token.
func NewState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// AuthorizeURL builds the provider's authorization endpoint URL for a
// flow started with the given state.
func (f *Flow) AuthorizeURL(state string) string {
	query := url.Values{}
	query.Set("response_type", "code")
	query.Set("client_id", f.cfg.ClientID)
	query.Set("redirect_uri", f.cfg.RedirectURI)
	query.Set("scope", "openid email profile")
	query.Set("state", state)
	return strings.TrimRight(f.cfg.Domain, "/") + "/oauth2/authorize?" + query.Encode()
}

// tokenResponse is the token endpoint's success payload.
type tokenResponse struct {
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// ExchangeCode trades an authorization code for tokens at the provider's
// token endpoint. redirectURI must be byte-identical to the one used when
// the flow started; the provider enforces this. A non-200 response is a
// terminal ErrExchangeFailed carrying the provider's status and body.
func (f *Flow) ExchangeCode(ctx context.Context, code, redirectURI string) (*TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", f.cfg.ClientID)
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)
	if f.cfg.ClientSecret != "" {
		form.Set("client_secret", f.cfg.ClientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &ErrExchangeFailed{Status: 0, Body: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ErrExchangeFailed{Status: resp.StatusCode, Body: string(body)}
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	return &TokenSet{
		IDToken:      parsed.IDToken,
		AccessToken:  parsed.AccessToken,
		RefreshToken: parsed.RefreshToken,
		ExpiresIn:    parsed.ExpiresIn,
	}, nil
}

// Identity extracts the authenticated identity from an ID token using the
// configured verifier.
func (f *Flow) Identity(ctx context.Context, idToken string) (*Identity, error) {
	return f.verifier.Verify(ctx, idToken)
}
