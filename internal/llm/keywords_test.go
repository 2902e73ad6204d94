package llm

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient returns canned responses for testing without hitting Gemini.
// Safe for concurrent use, like the real client.
type fakeClient struct {
	response string
	err      error

	mu      sync.Mutex
	prompts []string
	tasks   []Task
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string, task Task) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.tasks = append(f.tasks, task)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeClient) Close() error { return nil }

func TestParseKeywords(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "comma separated",
			input:    "Go, PostgreSQL, Docker",
			expected: []string{"Go", "PostgreSQL", "Docker"},
		},
		{
			name:     "newline separated",
			input:    "Go\nPostgreSQL\nDocker",
			expected: []string{"Go", "PostgreSQL", "Docker"},
		},
		{
			name:     "bulleted list",
			input:    "- Go\n- PostgreSQL\n* Docker",
			expected: []string{"Go", "PostgreSQL", "Docker"},
		},
		{
			name:     "mixed separators with blanks",
			input:    "Go,\n\n  PostgreSQL ,,Docker\n",
			expected: []string{"Go", "PostgreSQL", "Docker"},
		},
		{
			name:     "code fenced",
			input:    "```\nGo, Docker\n```",
			expected: []string{"Go", "Docker"},
		},
		{
			name:     "empty response",
			input:    "",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseKeywords(tt.input))
		})
	}
}

func TestExtractKeywords(t *testing.T) {
	client := &fakeClient{response: "Go, Kubernetes\nTerraform"}

	keywords, err := ExtractKeywords(context.Background(), client, "We need a platform engineer with Go and Kubernetes experience.")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Kubernetes", "Terraform"}, keywords)

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "platform engineer")
	assert.Contains(t, client.prompts[0], "ATS")
	assert.Equal(t, []Task{TaskExtract}, client.tasks)
}

func TestExtractKeywords_ClientError(t *testing.T) {
	client := &fakeClient{err: errors.New("quota exceeded")}

	_, err := ExtractKeywords(context.Background(), client, "some job description")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to extract keywords")
}
