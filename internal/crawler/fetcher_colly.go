package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// CollyFetcher implements the Fetcher interface using the Colly collector.
// It performs exactly one request per Fetch call: no internal retries, no
// link following. A cookie jar lives on the fetcher instance, so
// session-scoped pages can be crawled across sequential calls.
type CollyFetcher struct {
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// NewCollyFetcher constructs a configured Colly-based Fetcher.
func NewCollyFetcher(cfg Config, logger *zap.Logger) (*CollyFetcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []colly.CollectorOption{
		colly.Async(true),
		colly.UserAgent(cfg.EffectiveUserAgent()),
		colly.MaxBodySize(int(cfg.MaxPageBytes)),
	}
	base := colly.NewCollector(opts...)
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          128,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.RequestTimeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(cfg.RequestTimeout)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	base.SetCookieJar(jar)

	return &CollyFetcher{
		baseCollector: base,
		logger:        logger,
	}, nil
}

// Fetch retrieves a page via the configured Colly collector.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	return f.FetchWithHeaders(ctx, rawURL, nil)
}

// FetchWithHeaders retrieves a page with extra request headers attached,
// used when resubmitting a request carrying a solved challenge token.
func (f *CollyFetcher) FetchWithHeaders(ctx context.Context, rawURL string, headers http.Header) (Page, error) {
	collector := f.baseCollector.Clone()
	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	if len(headers) > 0 {
		collector.OnRequest(func(r *colly.Request) {
			for k, vs := range headers {
				for _, v := range vs {
					r.Headers.Set(k, v)
				}
			}
		})
	}

	start := time.Now()
	collector.OnResponse(func(r *colly.Response) {
		respHeaders := http.Header{}
		if r.Headers != nil {
			for k, v := range *r.Headers {
				cp := make([]string, len(v))
				copy(cp, v)
				respHeaders[k] = cp
			}
		}
		page := Page{
			URL:        rawURL,
			FinalURL:   r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Headers:    respHeaders,
			Body:       append([]byte{}, r.Body...),
			Duration:   time.Since(start),
		}
		send(fetchResult{page: page})
	})

	collector.OnError(func(r *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		if r != nil && r.StatusCode > 0 {
			send(fetchResult{err: NewFetchError(FetchStatus, rawURL, r.StatusCode, err)})
			return
		}
		send(fetchResult{err: NewFetchError(FetchTransport, rawURL, 0, err)})
	})

	if err := collector.Visit(rawURL); err != nil {
		return Page{}, NewFetchError(FetchTransport, rawURL, 0, err)
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return Page{}, NewFetchError(FetchTransport, rawURL, 0, err)
		}
		if res.err != nil {
			return Page{}, res.err
		}
		if !utf8.Valid(res.page.Body) {
			return Page{}, NewFetchError(FetchDecode, rawURL, res.page.StatusCode,
				errors.New("response body is not valid text"))
		}
		return res.page, nil
	default:
		return Page{}, NewFetchError(FetchTransport, rawURL, 0, errors.New("fetch produced no result"))
	}
}

type fetchResult struct {
	page Page
	err  error
}
