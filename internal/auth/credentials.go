package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Outcome is the closed set of results a password-grant call can produce.
// Handlers dispatch on it exhaustively; no provider exception types leak out.
type Outcome string

// Password-grant outcomes.
const (
	OutcomeSuccess          Outcome = "success"
	OutcomeChallenge        Outcome = "challenge"
	OutcomeNotAuthorized    Outcome = "not_authorized"
	OutcomeUserNotFound     Outcome = "user_not_found"
	OutcomeUserNotConfirmed Outcome = "user_not_confirmed"
	OutcomeError            Outcome = "error"
)

// TokenSet holds the opaque bearer tokens issued by the provider.
type TokenSet struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// PasswordGrantResult is the outcome of one password-grant attempt.
// Exactly one of Tokens, Challenge*, or Cause is meaningful, per Outcome.
type PasswordGrantResult struct {
	Outcome          Outcome
	Tokens           *TokenSet
	ChallengeName    string
	ChallengeSession string
	Cause            error // set for OutcomeError
}

// CredentialStore is the external identity provider's direct-authentication
// operation. Implementations must classify provider failures into the
// Outcome set rather than returning them as transport errors; the error
// return is reserved for network-level failures.
type CredentialStore interface {
	PasswordGrant(ctx context.Context, email, password string) (*PasswordGrantResult, error)
}

// exchangeTimeout bounds every round-trip to the identity provider.
const exchangeTimeout = 15 * time.Second

// CognitoCredentials calls the Cognito IDP InitiateAuth API directly.
type CognitoCredentials struct {
	endpoint     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

// NewCognitoCredentials creates a credential-store client for the given
// regional endpoint. clientSecret may be empty for public clients.
func NewCognitoCredentials(endpoint, clientID, clientSecret string) *CognitoCredentials {
	return &CognitoCredentials{
		endpoint:     endpoint,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: exchangeTimeout},
	}
}

// initiateAuthRequest is the InitiateAuth wire format.
type initiateAuthRequest struct {
	AuthFlow       string            `json:"AuthFlow"`
	ClientID       string            `json:"ClientId"`
	AuthParameters map[string]string `json:"AuthParameters"`
}

// initiateAuthResponse is the subset of the InitiateAuth response we consume.
type initiateAuthResponse struct {
	AuthenticationResult *struct {
		IDToken      string `json:"IdToken"`
		AccessToken  string `json:"AccessToken"`
		RefreshToken string `json:"RefreshToken"`
		ExpiresIn    int    `json:"ExpiresIn"`
	} `json:"AuthenticationResult"`
	ChallengeName string `json:"ChallengeName"`
	Session       string `json:"Session"`
}

// providerError is the provider's error envelope.
type providerError struct {
	Type    string `json:"__type"`
	Message string `json:"message"`
}

// PasswordGrant authenticates email+password against the provider.
func (c *CognitoCredentials) PasswordGrant(ctx context.Context, email, password string) (*PasswordGrantResult, error) {
	params := map[string]string{
		"USERNAME": email,
		"PASSWORD": password,
	}
	if hash := SecretHash(email, c.clientID, c.clientSecret); hash != "" {
		params["SECRET_HASH"] = hash
	}

	body, err := json.Marshal(initiateAuthRequest{
		AuthFlow:       "USER_PASSWORD_AUTH",
		ClientID:       c.clientID,
		AuthParameters: params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-amz-json-1.1")
	req.Header.Set("X-Amz-Target", "AWSCognitoIdentityProviderService.InitiateAuth")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("credential store unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read credential store response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return classifyProviderError(respBody), nil
	}

	var parsed initiateAuthResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse credential store response: %w", err)
	}

	if parsed.ChallengeName != "" {
		return &PasswordGrantResult{
			Outcome:          OutcomeChallenge,
			ChallengeName:    parsed.ChallengeName,
			ChallengeSession: parsed.Session,
		}, nil
	}

	if parsed.AuthenticationResult == nil {
		return &PasswordGrantResult{
			Outcome: OutcomeError,
			Cause:   fmt.Errorf("provider returned neither tokens nor a challenge"),
		}, nil
	}

	return &PasswordGrantResult{
		Outcome: OutcomeSuccess,
		Tokens: &TokenSet{
			IDToken:      parsed.AuthenticationResult.IDToken,
			AccessToken:  parsed.AuthenticationResult.AccessToken,
			RefreshToken: parsed.AuthenticationResult.RefreshToken,
			ExpiresIn:    parsed.AuthenticationResult.ExpiresIn,
		},
	}, nil
}

// classifyProviderError maps the provider's exception name onto the
// closed Outcome set.
func classifyProviderError(body []byte) *PasswordGrantResult {
	var pe providerError
	_ = json.Unmarshal(body, &pe)

	// Exception names may be namespaced, e.g. "com.amazon...#NotAuthorizedException".
	name := pe.Type
	if idx := strings.LastIndex(name, "#"); idx >= 0 {
		name = name[idx+1:]
	}

	switch name {
	case "NotAuthorizedException":
		return &PasswordGrantResult{Outcome: OutcomeNotAuthorized}
	case "UserNotFoundException":
		return &PasswordGrantResult{Outcome: OutcomeUserNotFound}
	case "UserNotConfirmedException":
		return &PasswordGrantResult{Outcome: OutcomeUserNotConfirmed}
	default:
		return &PasswordGrantResult{
			Outcome: OutcomeError,
			Cause:   fmt.Errorf("provider error %s: %s", name, pe.Message),
		}
	}
}
