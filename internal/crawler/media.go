package crawler

import (
	"context"

	"go.uber.org/zap"
)

// AssetKind is the coarse media classification used for dispatch.
type AssetKind string

// Recognized asset kinds.
const (
	AssetImage  AssetKind = "image"
	AssetVideo  AssetKind = "video"
	AssetBinary AssetKind = "binary"
)

var imageExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {}, "svg": {}, "bmp": {}, "ico": {},
}

var videoExtensions = map[string]struct{}{
	"mp4": {}, "webm": {}, "mov": {}, "avi": {}, "mkv": {}, "m4v": {},
}

var binaryExtensions = map[string]struct{}{
	"pdf": {}, "zip": {}, "gz": {}, "tar": {}, "doc": {}, "docx": {}, "xls": {}, "xlsx": {},
}

// Asset describes one media URL dispatched to the storage sink.
type Asset struct {
	SourceURL     string
	SuggestedName string
	Kind          AssetKind
	StoredURI     string
}

// ClassifyAsset maps a URL to an asset kind by extension heuristic.
// The second return is false for URLs that do not look like media.
func ClassifyAsset(rawURL string) (AssetKind, bool) {
	ext := extensionOf(rawURL)
	if ext == "" {
		return "", false
	}
	if _, ok := imageExtensions[ext]; ok {
		return AssetImage, true
	}
	if _, ok := videoExtensions[ext]; ok {
		return AssetVideo, true
	}
	if _, ok := binaryExtensions[ext]; ok {
		return AssetBinary, true
	}
	return "", false
}

// MediaPipeline identifies downloadable assets on an artifact and hands
// each to the storage sink. It performs no disk or network I/O itself.
type MediaPipeline struct {
	sink     MediaSink
	logger   *zap.Logger
	errorLog ErrorLog
}

// NewMediaPipeline builds a pipeline around the sink. A nil sink yields a
// pipeline that classifies but dispatches nothing.
func NewMediaPipeline(sink MediaSink, logger *zap.Logger, errorLog ErrorLog) *MediaPipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaPipeline{sink: sink, logger: logger, errorLog: errorLog}
}

// Dispatch classifies the artifact's media URLs (plus any extracted links
// that carry a media extension) and dispatches each to the sink. One
// failed dispatch is logged and does not affect the others.
func (m *MediaPipeline) Dispatch(ctx context.Context, artifact Artifact) []Asset {
	candidates := make([]string, 0, len(artifact.MediaURLs))
	seen := make(map[string]struct{})
	appendCandidate := func(u string) {
		if _, dup := seen[u]; dup {
			return
		}
		seen[u] = struct{}{}
		candidates = append(candidates, u)
	}
	for _, u := range artifact.MediaURLs {
		appendCandidate(u)
	}
	for _, u := range artifact.Links {
		if _, ok := ClassifyAsset(u); ok {
			appendCandidate(u)
		}
	}

	var dispatched []Asset
	for _, u := range candidates {
		kind, ok := ClassifyAsset(u)
		if !ok {
			// Media tags can reference extension-less URLs; treat as image.
			kind = AssetImage
		}
		asset := Asset{SourceURL: u, SuggestedName: safeBasename(u), Kind: kind}
		if m.sink == nil {
			dispatched = append(dispatched, asset)
			continue
		}
		uri, err := m.sink.Store(ctx, asset.SourceURL, asset.SuggestedName)
		if err != nil {
			derr := &DispatchError{AssetURL: u, Err: err}
			m.logger.Warn("media dispatch failed", zap.String("asset", u), zap.Error(err))
			if m.errorLog != nil {
				m.errorLog.Record("media dispatch", derr)
			}
			continue
		}
		asset.StoredURI = uri
		dispatched = append(dispatched, asset)
		TotalMediaDispatched.Inc()
	}
	return dispatched
}
