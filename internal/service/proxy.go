// Package service implements header sanitizing, CORS rewriting and the
// forwarding decision for proxied requests.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"cors-anywhere-go/internal/header"
	"cors-anywhere-go/internal/model"
)

// Upstream fetches a target URL and returns its buffered response.
type Upstream interface {
	Fetch(ctx context.Context, fr *model.ForwardRequest) (*model.ProxyResponse, error)
}

// CORSService mediates between a browser caller and a target URL.
type CORSService struct {
	upstream Upstream
	logger   *slog.Logger
}

// NewCORSService creates a CORSService.
func NewCORSService(up Upstream, logger *slog.Logger) *CORSService {
	return &CORSService{
		upstream: up,
		logger:   logger.With("component", "cors_service"),
	}
}

// Mediate answers pr. Preflight requests are answered locally with 200 OK
// and an empty body; the target is never contacted. Other requests are
// forwarded to pr.Target with the outbound headers and the inbound method and
// body. CORS headers are rewritten on every response.
func (s *CORSService) Mediate(pr *model.ProxyRequest, outbound *header.Map) (*model.ProxyResponse, error) {
	cr := CORSRequestFrom(pr)

	if cr.Preflight {
		resp := &model.ProxyResponse{
			StatusCode: http.StatusOK,
			StatusText: http.StatusText(http.StatusOK),
			Header:     header.New(),
		}
		RewriteCORS(resp.Header, cr, nil)
		return resp, nil
	}

	target, err := ValidateTarget(pr.Target)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("forwarding request",
		"method", pr.Method,
		"host", target.Host,
	)

	ctx := pr.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if outbound == nil {
		outbound = header.New()
	}
	resp, err := s.upstream.Fetch(ctx, &model.ForwardRequest{
		Method:        pr.Method,
		URL:           pr.Target,
		Header:        outbound.HTTP(),
		Body:          pr.Body,
		ContentLength: pr.ContentLength,
	})
	if err != nil {
		return nil, fmt.Errorf("forward to target: %w", err)
	}

	received := resp.Header
	if received == nil {
		received = header.New()
	}
	resp.Header = received.Clone()
	RewriteCORS(resp.Header, cr, received)
	return resp, nil
}
