// Package crawler implements a recursive web-scrape engine: given a seed
// URL it fetches pages, extracts outbound links and content, decides which
// links to follow, and bounds the traversal by depth, visitation history,
// and an optional target-phrase predicate.
//
// The engine is deliberately split along capability seams: fetching
// (Fetcher), robots enforcement (RobotsPolicy), CAPTCHA solving (Solver),
// media persistence (MediaSink), and page handling (PageHandler) are all
// interfaces so callers can swap implementations without touching the
// traversal loop.
package crawler
