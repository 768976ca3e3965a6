// Package sinks provides ready-made progress.Sink implementations.
package sinks
