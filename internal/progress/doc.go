// Package progress streams scrape run milestones to pluggable sinks.
package progress
