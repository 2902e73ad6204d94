package llm

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-builder/internal/prompts"
)

// Register selects the rewriting prompt for a bullet's context.
type Register string

const (
	// RegisterJob rewrites work-experience bullets.
	RegisterJob Register = "job"
	// RegisterProject rewrites project bullets.
	RegisterProject Register = "project"
)

var rewritePromptKeys = map[Register]string{
	RegisterJob:     "rewrite-job-bullet",
	RegisterProject: "rewrite-project-bullet",
}

// rewriteConcurrency caps in-flight model calls per batch.
const rewriteConcurrency = 3

// RewriteBullets rewrites each bullet point for the given register and
// returns the rewritten bullets in input order. Bullets are rewritten
// concurrently, so the client must be safe for concurrent use. A failure on
// any bullet fails the whole batch.
func RewriteBullets(ctx context.Context, client Client, bullets []string, register Register) ([]string, error) {
	key, ok := rewritePromptKeys[register]
	if !ok {
		return nil, fmt.Errorf("unknown rewrite register %q", register)
	}
	template := prompts.MustGet("rewriting.json", key)

	rewritten := make([]string, len(bullets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(rewriteConcurrency)

	for i, bullet := range bullets {
		g.Go(func() error {
			prompt := prompts.Format(template, map[string]string{"Bullet": bullet})

			text, err := client.GenerateContent(ctx, prompt, TaskRewrite)
			if err != nil {
				return fmt.Errorf("failed to rewrite bullet %d: %w", i+1, err)
			}

			cleaned := cleanBullet(text)
			if cleaned == "" {
				return fmt.Errorf("empty rewrite for bullet %d", i+1)
			}
			rewritten[i] = cleaned
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rewritten, nil
}

// cleanBullet normalizes model output to a single bullet line, dropping
// fences, surrounding quotes, and bullet markers the model may add.
func cleanBullet(text string) string {
	text = StripFences(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimSpace(text)
	text = strings.Trim(text, `"`)
	text = strings.TrimLeft(text, "-*• ")
	return strings.TrimSpace(text)
}
