package crawler

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// wellKnownPaths are probed once per host when open-directory probing is
// enabled. The list is deliberately short; probing is a side-scan, not a
// gate, and must stay cheap.
var wellKnownPaths = []string{
	"/backup",
	"/config",
	"/logs",
	"/uploads",
	"/files",
	"/admin",
}

// OpenDirProber checks a host for commonly exposed directories. All
// probes are best-effort: a probe failure never blocks the traversal.
type OpenDirProber struct {
	client *http.Client
	logger *zap.Logger
}

// NewOpenDirProber builds a prober with its own short-timeout client.
func NewOpenDirProber(logger *zap.Logger) *OpenDirProber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenDirProber{
		client: &http.Client{Timeout: 5 * time.Second},
		logger: logger,
	}
}

// Probe checks the well-known paths on the URL's host and returns those
// that answered with a success status.
func (p *OpenDirProber) Probe(ctx context.Context, rawURL string) []string {
	base, err := url.Parse(rawURL)
	if err != nil || base.Host == "" {
		return nil
	}
	var accessible []string
	for _, dir := range wellKnownPaths {
		probeURL := url.URL{Scheme: base.Scheme, Host: base.Host, Path: dir}
		if p.accessible(ctx, probeURL.String()) {
			p.logger.Info("open directory found", zap.String("url", probeURL.String()))
			accessible = append(accessible, probeURL.String())
		}
		if ctx.Err() != nil {
			break
		}
	}
	return accessible
}

func (p *OpenDirProber) accessible(ctx context.Context, probeURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
