package crawler

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures every knob that influences a scrape run. It is decoupled
// from Viper so the engine can be constructed and tested independently,
// and it is treated as an immutable snapshot for the lifetime of a run.
type Config struct {
	Seeds        []string
	FollowLinks  bool
	MaxDepth     int
	UserAgent    string
	TargetPhrase string

	RespectRobots  bool
	ProbeOpenDirs  bool
	ScriptKeywords []string

	RequestTimeout time.Duration
	MaxPageBytes   int64

	// Politeness: at most RatePerHost fetches per second per host, plus a
	// random human-like pause drawn from [DelayMin, DelayMax].
	RatePerHost float64
	DelayMin    time.Duration
	DelayMax    time.Duration

	OutputDir string
}

// LoadConfig constructs a Config by reading from Viper. All values
// originate from the config file, env vars, or CLI flags.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		Seeds:          v.GetStringSlice("scraper.seeds"),
		FollowLinks:    v.GetBool("scraper.follow_links"),
		MaxDepth:       v.GetInt("scraper.max_depth"),
		UserAgent:      v.GetString("scraper.user_agent"),
		TargetPhrase:   v.GetString("scraper.target_phrase"),
		RespectRobots:  v.GetBool("scraper.respect_robots"),
		ProbeOpenDirs:  v.GetBool("scraper.probe_open_dirs"),
		ScriptKeywords: normalizeKeywords(v.GetStringSlice("scraper.script_keywords")),
		RequestTimeout: v.GetDuration("scraper.request_timeout"),
		MaxPageBytes:   v.GetInt64("scraper.max_page_bytes"),
		RatePerHost:    v.GetFloat64("scraper.rate_per_host"),
		DelayMin:       v.GetDuration("scraper.delay_min"),
		DelayMax:       v.GetDuration("scraper.delay_max"),
		OutputDir:      v.GetString("scraper.output_dir"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations. It runs
// before any network activity; a failure here is the only run-fatal error.
func (c Config) Validate() error {
	if len(c.Seeds) == 0 {
		return fmt.Errorf("scraper.seeds must include at least one seed URL")
	}
	for _, seed := range c.Seeds {
		if _, err := NormalizeURL(seed); err != nil {
			return fmt.Errorf("invalid seed %q: %w", seed, err)
		}
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("scraper.max_depth must be >= 0")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("scraper.request_timeout must be > 0")
	}
	if c.MaxPageBytes <= 0 {
		return fmt.Errorf("scraper.max_page_bytes must be > 0")
	}
	if c.RatePerHost < 0 {
		return fmt.Errorf("scraper.rate_per_host must be >= 0")
	}
	if c.DelayMin < 0 || c.DelayMax < c.DelayMin {
		return fmt.Errorf("scraper delay window must satisfy 0 <= delay_min <= delay_max")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("scraper.output_dir must be set")
	}
	return nil
}

// EffectiveUserAgent returns the configured user agent, or a random one
// from the pool when unset.
func (c Config) EffectiveUserAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return RandomUserAgent()
}

func normalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{})
	for _, kw := range in {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}
