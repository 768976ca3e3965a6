package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// defaultRunConfig is the configuration used by the zero-setup Run entry
// point: polite, robots-respecting, two levels deep.
func defaultRunConfig(seed string) Config {
	return Config{
		Seeds:          []string{seed},
		FollowLinks:    true,
		MaxDepth:       2,
		RespectRobots:  true,
		ProbeOpenDirs:  true,
		RequestTimeout: 15 * time.Second,
		MaxPageBytes:   10 << 20,
		RatePerHost:    1,
		DelayMin:       500 * time.Millisecond,
		DelayMax:       2 * time.Second,
		OutputDir:      ".",
	}
}

// Run scrapes a single seed with default settings: robots.txt enforced,
// open-directory probing on, cookie-aware fetching, recursive traversal
// two levels deep, and failures appended to error.log in the working
// directory. Callers wanting control build an Engine instead.
func Run(ctx context.Context, seed string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := defaultRunConfig(seed)
	fetcher, err := NewCollyFetcher(cfg, logger)
	if err != nil {
		return fmt.Errorf("build fetcher: %w", err)
	}
	engine := NewEngine(cfg, fetcher, logger,
		WithRobots(NewRobotsEnforcer(true, cfg.EffectiveUserAgent(), logger)),
		WithRetryPolicy(NewExponentialRetryPolicy()),
		WithErrorLog(NewFileErrorLog(filepath.Join(cfg.OutputDir, "error.log"), logger)),
	)
	return engine.Run(ctx)
}

// ExtractLinks parses HTML and returns every anchor href resolved against
// base, in document order. Relative links resolve against base; links that
// are empty, fragment-only, or non-HTTP are dropped.
func ExtractLinks(body []byte, baseURL string) ([]string, error) {
	if _, err := NormalizeURL(baseURL); err != nil {
		return nil, fmt.Errorf("base url %q: %w", baseURL, err)
	}
	artifact := NewExtractor(nil).Extract(body, baseURL)
	return artifact.Links, nil
}

// ScrapeJSContent scans the page's inline scripts for the given keywords
// and fetches each external script to scan it too. The result maps each
// found keyword to the source line of its first occurrence. This is a
// static text scan over script sources, not script execution.
func ScrapeJSContent(ctx context.Context, body []byte, baseURL string, keywords []string) (map[string]string, error) {
	if _, err := NormalizeURL(baseURL); err != nil {
		return nil, fmt.Errorf("base url %q: %w", baseURL, err)
	}
	keywords = normalizeKeywords(keywords)
	artifact := NewExtractor(keywords).Extract(body, baseURL)
	hits := artifact.ScriptHits

	client := &http.Client{Timeout: 10 * time.Second}
	for _, src := range artifact.ScriptSrcs {
		if err := ctx.Err(); err != nil {
			return hits, err
		}
		script, err := fetchScript(ctx, client, src)
		if err != nil {
			continue
		}
		scanScriptBody(script, keywords, hits)
	}
	return hits, nil
}

func fetchScript(ctx context.Context, client *http.Client, src string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", RandomUserAgent())
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("script status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
