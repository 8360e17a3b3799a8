package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"cors-anywhere-go/internal/config"
)

// Version is a string type for dependency injection of the build version.
type Version string

// HealthHandler serves health and status endpoints.
type HealthHandler struct {
	cfg     *config.Config
	version Version
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(cfg *config.Config, v Version) *HealthHandler {
	return &HealthHandler{cfg: cfg, version: v}
}

// Healthz returns a simple OK response for liveness probes.
func (h *HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

type statusResponse struct {
	Status             string `json:"status"`
	Version            string `json:"version"`
	AllowOrigins       int    `json:"allow_origins"`
	DenyTargets        int    `json:"deny_targets"`
	AllowMissingOrigin bool   `json:"allow_missing_origin"`
	MaxRedirects       int    `json:"max_redirects"`
	TimeoutSeconds     int    `json:"timeout_seconds"`
}

// Status returns proxy status information. Policy patterns are reported as
// counts only.
func (h *HealthHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{
		Status:             "ok",
		Version:            string(h.version),
		AllowOrigins:       len(h.cfg.Policy.AllowOrigins),
		DenyTargets:        len(h.cfg.Policy.DenyTargets),
		AllowMissingOrigin: h.cfg.Policy.MissingOriginAllowed(),
		MaxRedirects:       h.cfg.Upstream.MaxRedirects,
		TimeoutSeconds:     h.cfg.Upstream.TimeoutSeconds,
	})
}
