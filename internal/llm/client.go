// Package llm provides the Gemini-backed text generation used for keyword
// extraction and bullet rewriting.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Task selects which model handles a request.
type Task string

const (
	// TaskExtract covers keyword extraction (fast, cheap model).
	TaskExtract Task = "extract"
	// TaskRewrite covers bullet rewriting (needs nuance, stronger model).
	TaskRewrite Task = "rewrite"
)

// Config maps tasks to model names.
type Config struct {
	Models map[Task]string
}

// DefaultConfig returns the default model assignment.
func DefaultConfig() *Config {
	return &Config{
		Models: map[Task]string{
			TaskExtract: "gemini-2.5-flash-lite",
			TaskRewrite: "gemini-2.5-flash",
		},
	}
}

// Model returns the model name for a task, falling back to TaskExtract.
func (c *Config) Model(task Task) string {
	if model, ok := c.Models[task]; ok {
		return model
	}
	return c.Models[TaskExtract]
}

// Client is an abstraction over the text-generation provider.
type Client interface {
	// GenerateContent generates plain text for a prompt.
	GenerateContent(ctx context.Context, prompt string, task Task) (string, error)
	// Close releases any resources held by the client.
	Close() error
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewClient creates a Gemini-backed client.
func NewClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultConfig()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, config: config}, nil
}

// GenerateContent generates text for a prompt with the task's model.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, task Task) (string, error) {
	modelName := c.config.Model(task)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for task %s", task)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(0.2) // low temperature for consistent output

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(resp)
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse joins the text parts of a Gemini response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}

// StripFences removes markdown code fences an LLM may wrap output in.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
