// Package pdf renders resume HTML into PDF bytes using a headless browser.
// Requires Chrome/Chromium to be installed on the system.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// DefaultTimeout bounds a single render, browser startup included.
const DefaultTimeout = 30 * time.Second

// ErrEmptyDocument is returned when the HTML has no renderable content.
var ErrEmptyDocument = errors.New("document has no renderable content")

// A4 paper size in inches.
const (
	paperWidth  = 8.27
	paperHeight = 11.69
)

// Renderer converts HTML documents to PDF.
type Renderer struct {
	timeout time.Duration
	verbose bool
}

// NewRenderer creates a Renderer with the given timeout. A zero timeout uses
// DefaultTimeout.
func NewRenderer(timeout time.Duration, verbose bool) *Renderer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Renderer{timeout: timeout, verbose: verbose}
}

// RenderHTML renders an HTML document to PDF. The document is validated
// before a browser is started so obviously empty input fails fast.
func (r *Renderer) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	if err := ValidateHTML(html); err != nil {
		return nil, err
	}

	if r.verbose {
		log.Printf("[PDF] Rendering document: %d bytes of HTML", len(html))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, r.timeout)
	defer cancel()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("pdf rendering failed: %w", err)
	}

	if r.verbose {
		log.Printf("[PDF] Rendered PDF: %d bytes", len(pdf))
	}

	return pdf, nil
}

// ValidateHTML parses the document and rejects it when the body carries no
// text and no elements.
func ValidateHTML(html string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("invalid HTML: %w", err)
	}

	body := doc.Find("body")
	if strings.TrimSpace(body.Text()) == "" && body.Children().Length() == 0 {
		return ErrEmptyDocument
	}
	return nil
}
