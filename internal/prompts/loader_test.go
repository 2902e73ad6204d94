package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("keywords.json", "extract-keywords")
	require.NoError(t, err)
	assert.Contains(t, prompt, "ATS")
	assert.Contains(t, prompt, "{{.JobDescription}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("keywords.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestMustGet_ValidPrompt(t *testing.T) {
	ClearCache()

	assert.NotPanics(t, func() {
		prompt := MustGet("rewriting.json", "rewrite-job-bullet")
		assert.NotEmpty(t, prompt)
	})
}

func TestFormat(t *testing.T) {
	template := "Rewrite this bullet:\n{{.Bullet}}"
	result := Format(template, map[string]string{"Bullet": "Did things"})
	assert.Equal(t, "Rewrite this bullet:\nDid things", result)
}

func TestFormat_MissingKey(t *testing.T) {
	template := "Hello {{.Name}}"
	result := Format(template, map[string]string{})
	assert.Equal(t, template, result)
}

func TestCaching(t *testing.T) {
	ClearCache()

	first, err := Get("keywords.json", "extract-keywords")
	require.NoError(t, err)

	second, err := Get("keywords.json", "extract-keywords")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
