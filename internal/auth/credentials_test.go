package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIDP returns an httptest server that replies with the given status and body.
func fakeIDP(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AWSCognitoIdentityProviderService.InitiateAuth", r.Header.Get("X-Amz-Target"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPasswordGrant_Success(t *testing.T) {
	server := fakeIDP(t, http.StatusOK,
		`{"AuthenticationResult":{"IdToken":"id.tok","AccessToken":"acc.tok","RefreshToken":"ref.tok","ExpiresIn":3600}}`)

	store := NewCognitoCredentials(server.URL, "client-abc", "shh")
	result, err := store.PasswordGrant(context.Background(), "a@b.com", "hunter2")
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	require.NotNil(t, result.Tokens)
	assert.Equal(t, "id.tok", result.Tokens.IDToken)
	assert.Equal(t, "ref.tok", result.Tokens.RefreshToken)
}

func TestPasswordGrant_SendsSecretHash(t *testing.T) {
	var gotParams map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req initiateAuthRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotParams = req.AuthParameters
		_, _ = w.Write([]byte(`{"AuthenticationResult":{"IdToken":"t","AccessToken":"t"}}`))
	}))
	defer server.Close()

	store := NewCognitoCredentials(server.URL, "client-abc", "shh")
	_, err := store.PasswordGrant(context.Background(), "a@b.com", "hunter2")
	require.NoError(t, err)

	assert.Equal(t, "a@b.com", gotParams["USERNAME"])
	assert.Equal(t, SecretHash("a@b.com", "client-abc", "shh"), gotParams["SECRET_HASH"])
}

func TestPasswordGrant_NoSecretHashForPublicClient(t *testing.T) {
	var gotParams map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req initiateAuthRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotParams = req.AuthParameters
		_, _ = w.Write([]byte(`{"AuthenticationResult":{"IdToken":"t","AccessToken":"t"}}`))
	}))
	defer server.Close()

	store := NewCognitoCredentials(server.URL, "client-abc", "")
	_, err := store.PasswordGrant(context.Background(), "a@b.com", "hunter2")
	require.NoError(t, err)

	_, present := gotParams["SECRET_HASH"]
	assert.False(t, present)
}

func TestPasswordGrant_Challenge(t *testing.T) {
	server := fakeIDP(t, http.StatusOK,
		`{"ChallengeName":"SOFTWARE_TOKEN_MFA","Session":"challenge-session-token"}`)

	store := NewCognitoCredentials(server.URL, "client-abc", "shh")
	result, err := store.PasswordGrant(context.Background(), "a@b.com", "hunter2")
	require.NoError(t, err)

	assert.Equal(t, OutcomeChallenge, result.Outcome)
	assert.Equal(t, "SOFTWARE_TOKEN_MFA", result.ChallengeName)
	assert.Equal(t, "challenge-session-token", result.ChallengeSession)
	assert.Nil(t, result.Tokens)
}

func TestPasswordGrant_ProviderFailureClassification(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		outcome Outcome
	}{
		{
			name:    "wrong password",
			body:    `{"__type":"NotAuthorizedException","message":"Incorrect username or password."}`,
			outcome: OutcomeNotAuthorized,
		},
		{
			name:    "unknown user",
			body:    `{"__type":"UserNotFoundException","message":"User does not exist."}`,
			outcome: OutcomeUserNotFound,
		},
		{
			name:    "unconfirmed user",
			body:    `{"__type":"UserNotConfirmedException","message":"User is not confirmed."}`,
			outcome: OutcomeUserNotConfirmed,
		},
		{
			name:    "namespaced exception name",
			body:    `{"__type":"com.amazonaws.cognito#UserNotFoundException","message":"User does not exist."}`,
			outcome: OutcomeUserNotFound,
		},
		{
			name:    "anything else",
			body:    `{"__type":"TooManyRequestsException","message":"Rate exceeded"}`,
			outcome: OutcomeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := fakeIDP(t, http.StatusBadRequest, tt.body)

			store := NewCognitoCredentials(server.URL, "client-abc", "shh")
			result, err := store.PasswordGrant(context.Background(), "a@b.com", "hunter2")
			require.NoError(t, err)

			assert.Equal(t, tt.outcome, result.Outcome)
			if tt.outcome == OutcomeError {
				assert.Error(t, result.Cause)
			}
		})
	}
}
