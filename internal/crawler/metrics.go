package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalPagesScraped tracks pages successfully fetched and extracted.
	TotalPagesScraped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_pages_total",
		Help: "The total number of pages successfully fetched and extracted.",
	})
	// TotalFetchErrors tracks fetches that resulted in an error, by kind.
	TotalFetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scraper_fetch_errors_total",
		Help: "The total number of failed fetches, partitioned by error kind.",
	}, []string{"kind"})
	// TotalRobotsBlocked tracks URLs skipped because of robots.txt rules.
	TotalRobotsBlocked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_robots_blocked_total",
		Help: "The total number of URLs skipped due to robots.txt directives.",
	})
	// TotalMediaDispatched tracks media assets handed to the storage sink.
	TotalMediaDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_media_dispatched_total",
		Help: "The total number of media assets dispatched to storage.",
	})
	// TotalCaptchaChallenges tracks detected challenges by outcome.
	TotalCaptchaChallenges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scraper_captcha_challenges_total",
		Help: "The total number of CAPTCHA challenges detected, partitioned by outcome.",
	}, []string{"outcome"})
	// TotalTasksPruned tracks subtrees pruned by the target predicate.
	TotalTasksPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_tasks_pruned_total",
		Help: "The total number of subtrees pruned by the target-phrase predicate.",
	})
)
