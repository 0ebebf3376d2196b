package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/starwalkn/gotenberg-go-client/v8"
	"github.com/starwalkn/gotenberg-go-client/v8/document"
)

// PDFClient converts rendered HTML pages into PDF via a Gotenberg instance
// (Chromium route). The external call is opaque: HTML in, binary out, with a
// per-attempt timeout and a single retry on transient failure.
type PDFClient struct {
	client  *gotenberg.Client
	timeout time.Duration
}

// NewPDFClient constructs a PDFClient for the given Gotenberg URL. The
// timeout bounds each conversion attempt; values <= 0 fall back to 30s.
func NewPDFClient(url string, timeout time.Duration) (*PDFClient, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client, err := gotenberg.NewClient(url, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("create gotenberg client: %w", err)
	}
	return &PDFClient{client: client, timeout: timeout}, nil
}

// ConvertHTML renders a full HTML page into PDF bytes. It makes at most two
// attempts; the error from the last attempt is returned when both fail.
func (p *PDFClient) ConvertHTML(ctx context.Context, html string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		out, err := p.convert(ctx, html)
		if err == nil {
			return out, nil
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Msg("pdf conversion failed")
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("convert html to pdf: %w", lastErr)
}

// convert performs one conversion attempt with its own timeout.
func (p *PDFClient) convert(ctx context.Context, html string) ([]byte, error) {
	convertCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	index, err := document.FromString("index.html", html)
	if err != nil {
		return nil, fmt.Errorf("build index document: %w", err)
	}

	req := gotenberg.NewHTMLRequest(index)
	resp, err := p.client.Send(convertCtx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}
