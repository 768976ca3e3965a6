package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	systemclock "github.com/sitehound/sitehound/internal/clock/system"
	sha256hash "github.com/sitehound/sitehound/internal/hash/sha256"
	"github.com/sitehound/sitehound/internal/progress"
)

// headerFetcher is satisfied by fetchers that can attach extra request
// headers, used to resubmit a request carrying a solved challenge token.
type headerFetcher interface {
	FetchWithHeaders(ctx context.Context, rawURL string, headers http.Header) (Page, error)
}

// Engine drives the depth-first traversal of a site: it schedules tasks,
// consults the policy, fetches pages, extracts artifacts, dispatches media,
// and reports progress. The engine is single-threaded per run; concurrency
// across seeds belongs to the dispatcher.
type Engine struct {
	cfg       Config
	fetcher   Fetcher
	extractor *Extractor
	robots    RobotsPolicy
	retry     RetryPolicy
	media     *MediaPipeline
	resolver  *CaptchaResolver
	prober    *OpenDirProber
	recorder  PageRecorder
	handler   PageHandler
	errorLog  ErrorLog
	emitter   progress.Emitter
	limiter   *hostLimiter
	pauser    pauseController
	clock     Clock
	hasher    Hasher
	runID     [16]byte
	logger    *zap.Logger
}

// Option customizes an Engine at construction time.
type Option func(*Engine)

// WithRobots installs a robots.txt policy.
func WithRobots(robots RobotsPolicy) Option {
	return func(e *Engine) { e.robots = robots }
}

// WithRetryPolicy installs a retry policy for transient fetch failures.
func WithRetryPolicy(retry RetryPolicy) Option {
	return func(e *Engine) { e.retry = retry }
}

// WithMediaSink installs the sink that receives dispatched media assets.
func WithMediaSink(sink MediaSink) Option {
	return func(e *Engine) { e.media = NewMediaPipeline(sink, e.logger, e.errorLog) }
}

// WithSolver installs an external CAPTCHA solving capability.
func WithSolver(solver Solver) Option {
	return func(e *Engine) { e.resolver = NewCaptchaResolver(solver, e.logger) }
}

// WithPageRecorder installs a recorder that persists per-page metadata.
func WithPageRecorder(recorder PageRecorder) Option {
	return func(e *Engine) { e.recorder = recorder }
}

// WithPageHandler installs a caller hook invoked per fetched page.
func WithPageHandler(handler PageHandler) Option {
	return func(e *Engine) { e.handler = handler }
}

// WithErrorLog routes per-task failures to an append-only log.
func WithErrorLog(errorLog ErrorLog) Option {
	return func(e *Engine) {
		e.errorLog = errorLog
		if e.media != nil {
			e.media.errorLog = errorLog
		}
	}
}

// WithEmitter publishes progress events for the run.
func WithEmitter(emitter progress.Emitter) Option {
	return func(e *Engine) { e.emitter = emitter }
}

// WithClock overrides the wall clock.
func WithClock(clock Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithHasher overrides the content hasher used for page records.
func WithHasher(hasher Hasher) Option {
	return func(e *Engine) { e.hasher = hasher }
}

// WithRunID sets the run's identifier; the dispatcher assigns one per seed.
func WithRunID(id uuid.UUID) Option {
	return func(e *Engine) { e.runID = progress.UUIDToBytes(id) }
}

// NewEngine constructs a traversal engine around a fetcher. Capabilities
// not supplied through options are disabled rather than defaulted: no
// robots policy means no robots enforcement, no sink means media assets
// are classified but not stored.
func NewEngine(cfg Config, fetcher Fetcher, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: NewExtractor(cfg.ScriptKeywords),
		limiter:   newHostLimiter(cfg.RatePerHost),
		pauser:    &timerPauseController{},
		clock:     systemclock.Clock{},
		hasher:    sha256hash.Hasher{},
		runID:     progress.UUIDToBytes(uuid.New()),
		logger:    logger,
	}
	if cfg.ProbeOpenDirs {
		e.prober = NewOpenDirProber(logger)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run scrapes every configured seed sequentially, each with a fresh
// visited registry. The only errors returned are configuration problems
// and context cancellation; per-page failures are contained.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	for _, seed := range e.cfg.Seeds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.RecScrape(ctx, seed, NewVisitedSet(), e.cfg.TargetPhrase); err != nil {
			return err
		}
	}
	return nil
}

// RecScrape performs the recursive scrape of a single seed. The visited
// registry is shared with the caller so multiple calls can cooperate; a
// nil registry gets a fresh one. targetPhrase overrides the configured
// pruning predicate for this call.
func (e *Engine) RecScrape(ctx context.Context, seed string, visited *VisitedSet, targetPhrase string) error {
	norm, err := NormalizeURL(seed)
	if err != nil {
		return fmt.Errorf("seed %q: %w", seed, err)
	}
	if visited == nil {
		visited = NewVisitedSet()
	}

	runCfg := e.cfg
	runCfg.TargetPhrase = targetPhrase
	policy := NewPolicy(runCfg, e.robots)

	if e.prober != nil {
		if open := e.prober.Probe(ctx, norm); len(open) > 0 {
			e.logger.Warn("host exposes well-known directories",
				zap.String("seed", norm), zap.Strings("dirs", open))
		}
	}

	// Children are pushed in reverse so the first extracted link is the
	// next task popped, preserving document order.
	stack := []Task{{URL: norm, Depth: 0}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, state := e.processTask(ctx, policy, task, visited)
		e.logger.Debug("task finished",
			zap.String("url", task.URL),
			zap.Int("depth", task.Depth),
			zap.String("state", string(state)))
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return nil
}

// processTask runs one task to a terminal state and returns the child
// tasks it spawned. Every failure mode is contained here; nothing it
// returns can abort the surrounding traversal.
func (e *Engine) processTask(ctx context.Context, policy *Policy, task Task, visited *VisitedSet) ([]Task, TaskState) {
	if !policy.ShouldFetch(ctx, task, visited) {
		return nil, TaskSkipped
	}
	// Attempted URLs count as visited whether or not the fetch succeeds,
	// so a URL linked from many pages is tried at most once per run.
	visited.Mark(task.URL)

	host := HostOf(task.URL)
	if err := e.limiter.Wait(ctx, host); err != nil {
		return nil, TaskSkipped
	}
	RandomDelay(ctx, e.cfg.DelayMin, e.cfg.DelayMax)

	e.emit(progress.Event{Stage: progress.StageFetchStart, Site: host, URL: task.URL, Depth: task.Depth})

	page, err := e.fetchWithRetry(ctx, task.URL)
	if err == nil {
		if challenge, found := DetectChallenge(page.Body, e.pageBase(page)); found {
			page, err = e.clearChallenge(ctx, task.URL, challenge)
		}
	}
	if err != nil {
		e.reportFetchFailure(task, host, err)
		return nil, TaskFetchFailed
	}

	artifact := e.extractor.Extract(page.Body, e.pageBase(page))
	e.scanExternalScripts(ctx, &artifact)

	var assets []Asset
	if e.media != nil {
		assets = e.media.Dispatch(ctx, artifact)
		for _, asset := range assets {
			e.emit(progress.Event{
				Stage: progress.StageMediaDispatch,
				Site:  host,
				URL:   asset.SourceURL,
				Depth: task.Depth,
			})
		}
	}

	e.reportPage(task, page, artifact)
	e.recordPage(ctx, task, page, artifact, assets)
	if e.handler != nil {
		if herr := e.handler.Handle(ctx, page, artifact); herr != nil {
			e.logger.Warn("page handler failed", zap.String("url", task.URL), zap.Error(herr))
			if e.errorLog != nil {
				e.errorLog.Record("handler "+task.URL, herr)
			}
		}
	}

	TotalPagesScraped.Inc()
	e.emit(progress.Event{
		Stage:       progress.StageFetchDone,
		Site:        host,
		URL:         task.URL,
		Depth:       task.Depth,
		Bytes:       int64(page.ContentLength()),
		StatusClass: progress.ClassifyStatus(page.StatusCode),
		Dur:         page.Duration,
	})

	if !policy.ShouldRecurse(task, artifact) {
		if task.Depth >= e.cfg.MaxDepth || !e.cfg.FollowLinks {
			return nil, TaskDepthExhausted
		}
		TotalTasksPruned.Inc()
		return nil, TaskPruned
	}

	children := make([]Task, 0, len(artifact.Links))
	for _, link := range artifact.Links {
		norm, nerr := NormalizeURL(link)
		if nerr != nil {
			continue
		}
		if visited.Contains(norm) {
			continue
		}
		children = append(children, Task{URL: norm, Depth: task.Depth + 1})
	}
	return children, TaskRecursed
}

// fetchWithRetry asks the retry policy whether each failure is worth
// another attempt. The fetch adapter itself never retries.
func (e *Engine) fetchWithRetry(ctx context.Context, rawURL string) (Page, error) {
	attempt := 0
	for {
		page, err := e.fetcher.Fetch(ctx, rawURL)
		if err == nil {
			return page, nil
		}
		if e.retry == nil || !e.retry.ShouldRetry(err, attempt) {
			return Page{}, err
		}
		e.logger.Debug("retrying fetch",
			zap.String("url", rawURL), zap.Int("attempt", attempt), zap.Error(err))
		e.pauser.Pause(ctx, e.retry.Backoff(attempt))
		if ctx.Err() != nil {
			return Page{}, err
		}
		attempt++
	}
}

// clearChallenge routes a detected CAPTCHA to the solver and resubmits
// the request with the token attached. Any failure along the way, or a
// page that still carries a challenge after resubmission, surfaces as a
// CaptchaUnsolved fetch error.
func (e *Engine) clearChallenge(ctx context.Context, rawURL string, challenge Challenge) (Page, error) {
	e.logger.Info("captcha challenge detected",
		zap.String("url", rawURL), zap.String("marker", challenge.Marker))

	unsolved := func(cause error) (Page, error) {
		TotalCaptchaChallenges.WithLabelValues("unsolved").Inc()
		return Page{}, NewFetchError(FetchCaptchaUnsolved, rawURL, 0, cause)
	}

	if e.resolver == nil {
		return unsolved(fmt.Errorf("no solver configured"))
	}
	token, err := e.resolver.Resolve(ctx, challenge)
	if err != nil {
		return unsolved(err)
	}
	hf, ok := e.fetcher.(headerFetcher)
	if !ok {
		return unsolved(fmt.Errorf("fetcher cannot attach challenge token"))
	}
	headers := http.Header{}
	headers.Set(TokenHeader, token)
	page, err := hf.FetchWithHeaders(ctx, rawURL, headers)
	if err != nil {
		return unsolved(err)
	}
	if _, still := DetectChallenge(page.Body, e.pageBase(page)); still {
		return unsolved(fmt.Errorf("challenge persisted after token submission"))
	}
	TotalCaptchaChallenges.WithLabelValues("solved").Inc()
	return page, nil
}

// scanExternalScripts fetches the page's external scripts and scans them
// for the configured keywords. Best-effort: an unfetchable script is
// skipped, never fatal.
func (e *Engine) scanExternalScripts(ctx context.Context, artifact *Artifact) {
	if len(e.cfg.ScriptKeywords) == 0 || len(artifact.ScriptSrcs) == 0 {
		return
	}
	for _, src := range artifact.ScriptSrcs {
		if ctx.Err() != nil {
			return
		}
		if err := e.limiter.Wait(ctx, HostOf(src)); err != nil {
			return
		}
		script, err := e.fetcher.Fetch(ctx, src)
		if err != nil {
			e.logger.Debug("external script fetch failed", zap.String("src", src), zap.Error(err))
			continue
		}
		scanScriptBody(string(script.Body), e.cfg.ScriptKeywords, artifact.ScriptHits)
	}
}

func (e *Engine) reportFetchFailure(task Task, host string, err error) {
	kind := string(FetchTransport)
	var fe *FetchError
	if errors.As(err, &fe) {
		kind = string(fe.Kind)
	}
	TotalFetchErrors.WithLabelValues(kind).Inc()
	e.logger.Warn("fetch failed",
		zap.String("url", task.URL), zap.Int("depth", task.Depth), zap.Error(err))
	if e.errorLog != nil {
		e.errorLog.Record("fetch "+task.URL, err)
	}
	e.emit(progress.Event{
		Stage: progress.StageFetchFailed,
		Site:  host,
		URL:   task.URL,
		Depth: task.Depth,
		Note:  err.Error(),
	})
}

func (e *Engine) reportPage(task Task, page Page, artifact Artifact) {
	e.logger.Info("page scraped",
		zap.String("url", task.URL),
		zap.Int("status", page.StatusCode),
		zap.Int("depth", task.Depth),
		zap.Int("links", len(artifact.Links)),
		zap.Int("bytes", page.ContentLength()),
		zap.Duration("duration", page.Duration))
	for kw, line := range artifact.ScriptHits {
		e.logger.Info("keyword found in script",
			zap.String("url", task.URL), zap.String("keyword", kw), zap.String("line", line))
	}
	if len(artifact.Emails) > 0 {
		e.logger.Info("emails harvested",
			zap.String("url", task.URL), zap.Int("count", len(artifact.Emails)))
	}
	if artifact.SuspectedError {
		e.logger.Warn("page contains error markers", zap.String("url", task.URL))
	}
}

func (e *Engine) recordPage(ctx context.Context, task Task, page Page, artifact Artifact, assets []Asset) {
	if e.recorder == nil {
		return
	}
	record := PageRecord{
		RunID:       uuid.UUID(e.runID).String(),
		URL:         task.URL,
		Depth:       task.Depth,
		StatusCode:  page.StatusCode,
		FetchedAt:   e.clock.Now().UTC(),
		DurationMs:  page.Duration.Milliseconds(),
		Links:       len(artifact.Links),
		MediaAssets: len(assets),
	}
	if e.hasher != nil {
		record.ContentHash = e.hasher.Hash(page.Body)
	}
	if _, err := e.recorder.RecordPage(ctx, record); err != nil {
		e.logger.Warn("failed to record page", zap.String("url", task.URL), zap.Error(err))
		if e.errorLog != nil {
			e.errorLog.Record("record "+task.URL, err)
		}
	}
}

// pageBase picks the base URL for link resolution: the post-redirect URL
// when the fetcher reports one.
func (e *Engine) pageBase(page Page) string {
	if page.FinalURL != "" {
		return page.FinalURL
	}
	return page.URL
}

func (e *Engine) emit(evt progress.Event) {
	if e.emitter == nil {
		return
	}
	evt.RunID = e.runID
	evt.TS = e.clock.Now().UTC()
	e.emitter.Emit(evt)
}
