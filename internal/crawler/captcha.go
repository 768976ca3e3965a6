package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// challengeMarkers are signatures in page HTML that indicate a CAPTCHA
// block rather than real content.
var challengeMarkers = []string{
	"g-recaptcha",
	"h-captcha",
	"cf-challenge",
	"challenge-form",
}

// TokenHeader carries a solved challenge token on the resubmitted request.
const TokenHeader = "X-Challenge-Token"

// Challenge describes a detected CAPTCHA block on a page.
type Challenge struct {
	Marker   string
	AssetURL string
}

// DetectChallenge scans page HTML for a known challenge marker and, when
// found, locates the challenge asset (usually an image) to hand to the
// solver. The asset URL may be empty when the challenge is script-only.
func DetectChallenge(body []byte, baseURL string) (Challenge, bool) {
	marker := ""
	for _, m := range challengeMarkers {
		if bytes.Contains(body, []byte(m)) {
			marker = m
			break
		}
	}
	if marker == "" {
		return Challenge{}, false
	}

	challenge := Challenge{Marker: marker}
	base, err := url.Parse(baseURL)
	if err != nil {
		return challenge, true
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return challenge, true
	}
	doc.Find("form img[src], img.captcha[src], img[src*=captcha]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		src, _ := sel.Attr("src")
		if abs, ok := ResolveLink(base, src); ok {
			challenge.AssetURL = abs
			return false
		}
		return true
	})
	return challenge, true
}

// CaptchaResolver fetches challenge assets and routes them to an external
// Solver. It owns its own HTTP client because challenge assets are binary
// and bypass the text-decode rules of the page fetcher.
type CaptchaResolver struct {
	client *http.Client
	solver Solver
	logger *zap.Logger
}

// NewCaptchaResolver builds a resolver around the external solve
// capability. A nil solver disables resolution; detection still reports
// CaptchaUnsolved so callers can tell a challenge from a network error.
func NewCaptchaResolver(solver Solver, logger *zap.Logger) *CaptchaResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaptchaResolver{
		client: &http.Client{Timeout: 15 * time.Second},
		solver: solver,
		logger: logger,
	}
}

// Resolve downloads the challenge asset and asks the solver for a token.
// Script-only challenges have no asset; the solver is invoked with a nil
// payload and must work from its own session state.
func (r *CaptchaResolver) Resolve(ctx context.Context, challenge Challenge) (string, error) {
	if r == nil || r.solver == nil {
		return "", fmt.Errorf("no solver configured")
	}
	asset, err := r.fetchAsset(ctx, challenge.AssetURL)
	if err != nil {
		return "", fmt.Errorf("fetch challenge asset: %w", err)
	}
	token, err := r.solver.Solve(ctx, asset)
	if err != nil {
		return "", fmt.Errorf("solve challenge: %w", err)
	}
	return token, nil
}

func (r *CaptchaResolver) fetchAsset(ctx context.Context, assetURL string) ([]byte, error) {
	// Script-only challenges detect without an asset URL.
	if assetURL == "" {
		return nil, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			r.logger.Debug("failed to close challenge asset body", zap.Error(cerr))
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("challenge asset status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}
