package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/resume-builder/internal/prompts"
)

// ExtractKeywords asks the model for the ATS-relevant keywords in a job
// description and returns them as a cleaned list.
func ExtractKeywords(ctx context.Context, client Client, jobDescription string) ([]string, error) {
	template := prompts.MustGet("keywords.json", "extract-keywords")
	prompt := prompts.Format(template, map[string]string{
		"JobDescription": jobDescription,
	})

	text, err := client.GenerateContent(ctx, prompt, TaskExtract)
	if err != nil {
		return nil, fmt.Errorf("failed to extract keywords: %w", err)
	}

	return ParseKeywords(text), nil
}

// ParseKeywords splits model output into individual keywords. Models return
// comma-separated or newline-separated lists, sometimes with bullet markers;
// all of these are accepted.
func ParseKeywords(text string) []string {
	text = StripFences(text)
	text = strings.ReplaceAll(text, "\n", ",")

	keywords := make([]string, 0)
	for _, kw := range strings.Split(text, ",") {
		kw = strings.TrimSpace(kw)
		kw = strings.TrimLeft(kw, "-*• ")
		kw = strings.TrimSpace(kw)
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
