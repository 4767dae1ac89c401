package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ImageLoader verifies that an item's image is actually fetchable before the
// item is revealed. The browser's parallel <img> preloads become plain HTTP
// GETs here; the feed stays visual-only, so an unfetchable image keeps its
// item out of the feed entirely.
type ImageLoader interface {
	Load(ctx context.Context, imageURL string) error
}

// HTTPImageLoader probes images over HTTP. The body is drained up to a small
// cap: enough to know the URL serves bytes, without downloading full images
// for a feed the user may never scroll to.
type HTTPImageLoader struct {
	client  *http.Client
	timeout time.Duration
}

const probeReadLimit = 32 * 1024

func NewHTTPImageLoader(timeout time.Duration) *HTTPImageLoader {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &HTTPImageLoader{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

func (l *HTTPImageLoader) Load(ctx context.Context, imageURL string) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return fmt.Errorf("invalid image url: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("image fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("image fetch failed: status %d", resp.StatusCode)
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, probeReadLimit))
	return nil
}
