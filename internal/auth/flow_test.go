package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/config"
)

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		Region:       "us-east-1",
		UserPoolID:   "us-east-1_TestPool",
		ClientID:     "client-abc",
		ClientSecret: "shh",
		Domain:       "https://myapp.auth.us-east-1.amazoncognito.com",
		RedirectURI:  "https://myapp.example.com/callback",
		CookieName:   "resume_session",
		SessionTTL:   time.Hour,
		StateTTL:     10 * time.Minute,
	}
}

func TestNewState_URLSafeAndUnique(t *testing.T) {
	seen := make(map[string]bool)
	urlSafe := regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

	for i := 0; i < 50; i++ {
		state, err := NewState()
		require.NoError(t, err)

		assert.GreaterOrEqual(t, len(state), 32, "state must be at least 32 chars")
		assert.Regexp(t, urlSafe, state)
		assert.False(t, seen[state], "state repeated")
		seen[state] = true
	}
}

func TestAuthorizeURL(t *testing.T) {
	flow := NewFlow(testAuthConfig(), UnverifiedDecoder{})

	raw := flow.AuthorizeURL("state-123")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "myapp.auth.us-east-1.amazoncognito.com", parsed.Host)
	assert.Equal(t, "/oauth2/authorize", parsed.Path)

	query := parsed.Query()
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "client-abc", query.Get("client_id"))
	assert.Equal(t, "https://myapp.example.com/callback", query.Get("redirect_uri"))
	assert.Equal(t, "openid email profile", query.Get("scope"))
	assert.Equal(t, "state-123", query.Get("state"))
}

func TestExchangeCode_Success(t *testing.T) {
	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id_token":"id.tok","access_token":"acc.tok","refresh_token":"ref.tok","expires_in":3600}`))
	}))
	defer server.Close()

	flow := NewFlow(testAuthConfig(), UnverifiedDecoder{})
	flow.tokenURL = server.URL

	tokens, err := flow.ExchangeCode(context.Background(), "abc123", "https://myapp.example.com/callback")
	require.NoError(t, err)

	assert.Equal(t, "id.tok", tokens.IDToken)
	assert.Equal(t, "acc.tok", tokens.AccessToken)
	assert.Equal(t, "ref.tok", tokens.RefreshToken)
	assert.Equal(t, 3600, tokens.ExpiresIn)

	assert.Equal(t, "authorization_code", gotForm.Get("grant_type"))
	assert.Equal(t, "client-abc", gotForm.Get("client_id"))
	assert.Equal(t, "abc123", gotForm.Get("code"))
	assert.Equal(t, "https://myapp.example.com/callback", gotForm.Get("redirect_uri"))
	assert.Equal(t, "shh", gotForm.Get("client_secret"))
}

func TestExchangeCode_OmitsSecretForPublicClient(t *testing.T) {
	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		_, _ = w.Write([]byte(`{"id_token":"id.tok","access_token":"acc.tok"}`))
	}))
	defer server.Close()

	cfg := testAuthConfig()
	cfg.ClientSecret = ""
	flow := NewFlow(cfg, UnverifiedDecoder{})
	flow.tokenURL = server.URL

	_, err := flow.ExchangeCode(context.Background(), "abc123", cfg.RedirectURI)
	require.NoError(t, err)

	_, present := gotForm["client_secret"]
	assert.False(t, present)
}

func TestExchangeCode_ProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	flow := NewFlow(testAuthConfig(), UnverifiedDecoder{})
	flow.tokenURL = server.URL

	_, err := flow.ExchangeCode(context.Background(), "stale-code", "https://myapp.example.com/callback")
	require.Error(t, err)

	var exchangeErr *ErrExchangeFailed
	require.ErrorAs(t, err, &exchangeErr)
	assert.Equal(t, http.StatusBadRequest, exchangeErr.Status)
	assert.Contains(t, exchangeErr.Body, "invalid_grant")
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}
