// Package config provides configuration loading and validation for the server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// AuthConfig holds the identity-provider and session configuration.
// All provider fields are required except ClientSecret; a missing required
// field is a startup error, never a runtime failure.
type AuthConfig struct {
	Region       string // e.g. "us-east-1"
	UserPoolID   string
	ClientID     string
	ClientSecret string // optional; when set, a secret hash accompanies password-grant calls
	Domain       string // hosted auth domain, e.g. "https://myapp.auth.us-east-1.amazoncognito.com"

	RedirectURI           string // callback URL registered with the provider
	PostLogoutRedirectURI string

	CookieName     string
	SecureCookies  bool
	SessionTTL     time.Duration
	StateTTL       time.Duration // lifetime of a pending authorization request
	VerifyIDTokens bool          // verify ID-token signatures against the provider JWKS
}

// NewAuthConfig creates an AuthConfig from environment variables.
func NewAuthConfig() (*AuthConfig, error) {
	cfg := &AuthConfig{
		Region:                os.Getenv("COGNITO_REGION"),
		UserPoolID:            os.Getenv("COGNITO_USER_POOL_ID"),
		ClientID:              os.Getenv("COGNITO_CLIENT_ID"),
		ClientSecret:          os.Getenv("COGNITO_CLIENT_SECRET"),
		Domain:                os.Getenv("COGNITO_DOMAIN"),
		RedirectURI:           os.Getenv("REDIRECT_URI"),
		PostLogoutRedirectURI: os.Getenv("POST_LOGOUT_REDIRECT_URI"),
		CookieName:            os.Getenv("SESSION_COOKIE_NAME"),
		SecureCookies:         os.Getenv("SECURE_COOKIES") != "false",
		VerifyIDTokens:        os.Getenv("VERIFY_ID_TOKENS") != "false",
	}

	if cfg.CookieName == "" {
		cfg.CookieName = "resume_session"
	}
	if cfg.PostLogoutRedirectURI == "" {
		cfg.PostLogoutRedirectURI = "/"
	}

	var err error
	cfg.SessionTTL, err = durationEnv("SESSION_TTL_MINUTES", 12*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.StateTTL, err = durationEnv("STATE_TTL_MINUTES", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize validates the configuration.
func (c *AuthConfig) normalize() error {
	required := map[string]string{
		"COGNITO_REGION":       c.Region,
		"COGNITO_USER_POOL_ID": c.UserPoolID,
		"COGNITO_CLIENT_ID":    c.ClientID,
		"COGNITO_DOMAIN":       c.Domain,
		"REDIRECT_URI":         c.RedirectURI,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required but not set", name)
		}
	}
	if c.SessionTTL < time.Minute {
		return fmt.Errorf("SESSION_TTL_MINUTES must be at least 1 minute, got: %s", c.SessionTTL)
	}
	if c.StateTTL < time.Minute {
		return fmt.Errorf("STATE_TTL_MINUTES must be at least 1 minute, got: %s", c.StateTTL)
	}
	return nil
}

// Issuer returns the OIDC issuer URL for the configured user pool.
func (c *AuthConfig) Issuer() string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", c.Region, c.UserPoolID)
}

// IDPEndpoint returns the regional identity-provider API endpoint used for
// direct (non-browser) authentication calls.
func (c *AuthConfig) IDPEndpoint() string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/", c.Region)
}

// durationEnv reads a minute-valued environment variable with a default.
func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return time.Duration(minutes) * time.Minute, nil
}
