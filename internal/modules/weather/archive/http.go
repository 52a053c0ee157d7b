package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"mateometeo/internal/modules/weather/types"
)

// HTTPSource reads the archive from a static file server laid out like the
// data directory. Requests are rate limited so a wide custom range does not
// hammer the origin.
type HTTPSource struct {
	baseURL *url.URL
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPSource creates a source rooted at baseURL. rps is the maximum number
// of requests per second (may be fractional), burst the maximum burst size.
func NewHTTPSource(baseURL string, rps float64, burst int, timeout time.Duration) (*HTTPSource, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse data url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("data url %q: scheme must be http or https", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return &HTTPSource{
		baseURL: u,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}, nil
}

func (h *HTTPSource) Name() string {
	return "http:" + h.baseURL.String()
}

func (h *HTTPSource) Months(ctx context.Context) ([]Month, error) {
	body, err := h.get(ctx, ManifestFile)
	if err != nil {
		return nil, err
	}
	defer closeBody(body)
	m, err := decodeManifest(body)
	if err != nil {
		return nil, err
	}
	return m.Months(), nil
}

func (h *HTTPSource) Load(ctx context.Context, m Month) ([]types.Sample, error) {
	body, err := h.get(ctx, m.FileName())
	if errors.Is(err, errNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrMonthNotFound, m)
	}
	if err != nil {
		return nil, err
	}
	defer closeBody(body)
	samples, err := DecodeSamples(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.FileName(), err)
	}
	return samples, nil
}

var errNotFound = errors.New("not found")

func (h *HTTPSource) get(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	u := h.baseURL.ResolveReference(&url.URL{Path: name})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	slog.Debug("archive fetch", "url", u.String(), "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	switch {
	case resp.StatusCode == http.StatusNotFound:
		closeBody(resp.Body)
		return nil, fmt.Errorf("fetch %s: %w", name, errNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		closeBody(resp.Body)
		return nil, fmt.Errorf("fetch %s: unexpected status %s", name, resp.Status)
	}
	return resp.Body, nil
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		slog.Error("close response body", "error", err)
	}
}

var _ Source = (*HTTPSource)(nil)
