// Package client provides the HTTP client used to reach target URLs.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cors-anywhere-go/internal/config"
	"cors-anywhere-go/internal/header"
	"cors-anywhere-go/internal/metrics"
	"cors-anywhere-go/internal/model"
)

// ErrBodyTooLarge is returned when a target response exceeds upstream.max_body_bytes.
var ErrBodyTooLarge = errors.New("upstream response body exceeds limit")

// UpstreamClient fetches target URLs and buffers their responses.
type UpstreamClient struct {
	httpClient   *http.Client
	logger       *slog.Logger
	metrics      *metrics.Metrics
	maxBodyBytes int64
}

// NewUpstreamClient creates an UpstreamClient with connection pooling, timeouts
// and a bounded redirect chain.
// The metrics parameter is optional; pass nil to disable upstream metrics recording.
func NewUpstreamClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *UpstreamClient {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.Upstream.IdleConnections,
		MaxIdleConnsPerHost: cfg.Upstream.IdleConnections,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	maxRedirects := cfg.Upstream.MaxRedirects

	return &UpstreamClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		logger:       logger.With("component", "upstream_client"),
		metrics:      m,
		maxBodyBytes: cfg.Upstream.MaxBodyBytes,
	}
}

// Fetch sends fr to its target, follows redirects, and returns the response
// with the body read in full. The context controls the lifetime of the
// upstream request: when it is canceled (e.g. the client disconnects), the
// upstream request is canceled as well.
func (c *UpstreamClient) Fetch(ctx context.Context, fr *model.ForwardRequest) (*model.ProxyResponse, error) {
	body := fr.Body
	if body == nil || fr.ContentLength == 0 {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, fr.Method, fr.URL, body)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header = fr.Header
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	if body != http.NoBody {
		req.ContentLength = fr.ContentLength
	}

	c.logger.Debug("upstream request",
		"method", req.Method,
		"host", req.URL.Host,
	)

	start := time.Now()
	method := metrics.NormalizeMethod(req.Method)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, start, 0)
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := c.readBody(resp.Body)
	c.observe(method, start, resp.StatusCode)
	if err != nil {
		return nil, err
	}

	return &model.ProxyResponse{
		StatusCode: resp.StatusCode,
		StatusText: StatusText(resp),
		Header:     header.FromHTTP(resp.Header),
		Body:       data,
	}, nil
}

func (c *UpstreamClient) readBody(r io.Reader) ([]byte, error) {
	if c.maxBodyBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read upstream body: %w", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, c.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}
	if int64(len(data)) > c.maxBodyBytes {
		return nil, fmt.Errorf("%w (%d bytes)", ErrBodyTooLarge, c.maxBodyBytes)
	}
	return data, nil
}

// observe records upstream latency, and the response status when one was received.
func (c *UpstreamClient) observe(method string, start time.Time, status int) {
	if c.metrics == nil {
		return
	}
	c.metrics.UpstreamDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if status != 0 {
		c.metrics.UpstreamResponses.WithLabelValues(method, strconv.Itoa(status)).Inc()
	}
}

// StatusText extracts the reason phrase the target sent, falling back to the
// standard text for the code.
func StatusText(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if text, ok := strings.CutPrefix(resp.Status, code+" "); ok {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
