// downloader.go implements the fetch step for providers that return a
// temporary hosted URL instead of raw bytes. Images are fetched into
// memory; nothing touches disk on the generation path.
package imagegen

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"artgen_backend/core"
)

// Downloader fetches generated images from provider URLs.
//
// Thread Safety: Downloader is safe for concurrent use. Each fetch creates
// its own HTTP request.
type Downloader struct {
	client  *http.Client
	maxSize int64
}

// NewDownloader creates a downloader using the shared HTTP settings.
// Fetches larger than cfg.MaxDownloadSize are rejected.
func NewDownloader(cfg *core.Config) (*Downloader, error) {
	if cfg == nil {
		return nil, fmt.Errorf("imagegen: config cannot be nil")
	}
	return &Downloader{
		client:  core.GetHTTPClient(cfg, cfg.DownloadTimeout),
		maxSize: cfg.MaxDownloadSize,
	}, nil
}

// NewDownloaderWithClient creates a downloader with an explicit client,
// mainly for tests.
func NewDownloaderWithClient(client *http.Client, maxSize int64) *Downloader {
	return &Downloader{client: client, maxSize: maxSize}
}

// Fetch downloads the image at url into memory.
//
// Returns the image bytes and the Content-Type header. Provider URLs
// expire quickly, so callers fetch immediately after generation.
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	if url == "" {
		return nil, "", fmt.Errorf("imagegen: URL cannot be empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("imagegen: building fetch request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("imagegen: fetching image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("imagegen: fetch failed with status %d", resp.StatusCode)
	}

	limit := d.maxSize
	if limit <= 0 {
		limit = 50 * 1024 * 1024
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("imagegen: reading image data: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, "", fmt.Errorf("imagegen: image exceeds download limit of %d bytes", limit)
	}

	return data, resp.Header.Get("Content-Type"), nil
}
