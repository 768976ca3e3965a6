package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"go.uber.org/zap"
)

const maxAssetBytes = 32 << 20

// AssetStore downloads media assets and persists them through a BlobStore.
// It satisfies the engine's media sink: Store receives the asset's source
// URL and a suggested filename and returns the URI of the stored copy.
type AssetStore struct {
	store  BlobStore
	client *http.Client
	prefix string
	logger *zap.Logger
}

// NewAssetStore builds an asset store writing under prefix in the blob
// store. A nil client gets a default with a 30s timeout.
func NewAssetStore(store BlobStore, prefix string, client *http.Client, logger *zap.Logger) (*AssetStore, error) {
	if store == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if prefix == "" {
		prefix = "media"
	}
	return &AssetStore{store: store, client: client, prefix: prefix, logger: logger}, nil
}

// Store downloads the asset and writes it to the blob store. The stored
// object keeps the source URL's extension so the asset kind survives.
func (s *AssetStore) Store(ctx context.Context, sourceURL, suggestedName string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("build asset request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download asset: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			s.logger.Debug("failed to close asset body", zap.Error(cerr))
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("asset status %d", resp.StatusCode)
	}

	objectPath := path.Join(s.prefix, suggestedName)
	if ext := path.Ext(sourceURLPath(sourceURL)); ext != "" {
		objectPath += ext
	}
	contentType := resp.Header.Get("Content-Type")
	uri, err := s.store.PutObject(ctx, objectPath, contentType, io.LimitReader(resp.Body, maxAssetBytes))
	if err != nil {
		return "", fmt.Errorf("store asset: %w", err)
	}
	s.logger.Debug("asset stored",
		zap.String("source", sourceURL), zap.String("uri", uri))
	return uri, nil
}

func sourceURLPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Path
}
