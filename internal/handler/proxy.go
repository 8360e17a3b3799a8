package handler

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"

	"cors-anywhere-go/internal/client"
	"cors-anywhere-go/internal/config"
	"cors-anywhere-go/internal/header"
	"cors-anywhere-go/internal/info"
	"cors-anywhere-go/internal/metrics"
	"cors-anywhere-go/internal/model"
	"cors-anywhere-go/internal/policy"
	"cors-anywhere-go/internal/service"
)

// urlQueryPattern matches the query of URLs embedded in error messages.
var urlQueryPattern = regexp.MustCompile(`(https?://[^\s"?]*)\?[^\s"]*`)

// ProxyHandler is the entry point for every proxied request.
type ProxyHandler struct {
	service *service.CORSService
	policy  *policy.Filter
	info    *info.Responder
	cfg     *config.Config
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewProxyHandler creates a ProxyHandler.
// The metrics parameter is optional; pass nil to disable outcome metrics.
func NewProxyHandler(
	svc *service.CORSService,
	pf *policy.Filter,
	ir *info.Responder,
	cfg *config.Config,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ProxyHandler {
	return &ProxyHandler{
		service: svc,
		policy:  pf,
		info:    ir,
		cfg:     cfg,
		metrics: m,
		logger:  logger.With("component", "proxy_handler"),
	}
}

// Handle decodes the target from the query string, applies the policy, and
// either renders the info page or mediates the request to the target.
func (h *ProxyHandler) Handle(c echo.Context) error {
	req := c.Request()

	target, err := service.DecodeTarget(req.URL.RawQuery)
	if err != nil {
		return h.mapError(c, err)
	}

	inbound := header.FromHTTP(req.Header)
	origin, hasOrigin := inbound.Get("Origin")

	if !h.policy.Allowed(target, origin, hasOrigin) {
		h.logger.Info("request forbidden", "has_origin", hasOrigin)
		h.metrics.ObserveMediation(metrics.OutcomeForbidden)
		return h.write(c, h.info.Forbidden())
	}

	overrides := service.ParseOverrides(inbound.Value(service.OverrideHeader))

	pr := &model.ProxyRequest{
		Ctx:           req.Context(),
		Method:        req.Method,
		Target:        target,
		Header:        inbound,
		Body:          req.Body,
		ContentLength: req.ContentLength,
	}

	if target == "" {
		resp := h.info.Render(info.Details{
			BaseURL:   c.Scheme() + "://" + req.Host,
			Origin:    origin,
			HasOrigin: hasOrigin,
			Meta:      connMeta(c, h.cfg.Info),
			Overrides: overrides,
		})
		service.RewriteCORS(resp.Header, service.CORSRequestFrom(pr), nil)
		h.metrics.ObserveMediation(metrics.OutcomeInfo)
		return h.write(c, resp)
	}

	resp, err := h.service.Mediate(pr, service.BuildOutboundHeaders(inbound, overrides))
	if err != nil {
		return h.mapError(c, err)
	}

	if pr.Preflight() {
		h.metrics.ObserveMediation(metrics.OutcomePreflight)
	} else {
		h.metrics.ObserveMediation(metrics.OutcomeForwarded)
	}
	return h.write(c, resp)
}

// write sends resp to the client. Hop-by-hop headers are not copied, and
// Content-Length is left to net/http since the body is already buffered.
func (h *ProxyHandler) write(c echo.Context, resp *model.ProxyResponse) error {
	dst := c.Response().Header()
	for _, k := range resp.Header.Keys() {
		if header.IsHopByHop(k) || strings.EqualFold(k, echo.HeaderContentLength) {
			continue
		}
		dst.Del(k)
		for _, v := range resp.Header.Values(k) {
			dst.Add(k, v)
		}
	}

	c.Response().WriteHeader(resp.StatusCode)
	if len(resp.Body) == 0 {
		return nil
	}

	// The status line is already sent, so a failed write can only be logged.
	if _, err := c.Response().Write(resp.Body); err != nil {
		h.logger.Debug("writing response body", "err", err)
	}
	return nil
}

func (h *ProxyHandler) mapError(c echo.Context, err error) error {
	c.Response().Header().Set(echo.HeaderAccessControlAllowOrigin, "*")
	h.metrics.ObserveMediation(metrics.OutcomeError)

	if errors.Is(err, service.ErrMalformedTarget) {
		h.logger.Debug("bad target", "err", err)
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "target URL is not validly percent-encoded",
		})
	}

	if errors.Is(err, service.ErrInvalidTarget) {
		h.logger.Debug("bad target", "err", sanitizeError(err))
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "target must be an absolute http or https URL",
		})
	}

	h.logger.Error("proxy error",
		"err", sanitizeError(err),
		"method", c.Request().Method,
	)

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return c.JSON(http.StatusGatewayTimeout, map[string]string{
			"error": "upstream request timed out",
		})
	}

	if errors.Is(err, context.Canceled) {
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "client disconnected",
		})
	}

	if errors.Is(err, client.ErrBodyTooLarge) {
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "upstream response too large",
		})
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "upstream host unreachable",
		})
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "upstream connection failed",
		})
	}

	return c.JSON(http.StatusBadGateway, map[string]string{
		"error": "upstream request failed",
	})
}

// sanitizeError redacts URL queries from error messages, since target
// queries often carry tokens.
func sanitizeError(err error) string {
	return urlQueryPattern.ReplaceAllString(err.Error(), "${1}?[REDACTED]")
}
