package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"cors-anywhere-go/internal/config"
	"cors-anywhere-go/internal/model"
)

const headerCFRay = "CF-Ray"

// connMeta collects the connection metadata shown on the info page.
func connMeta(c echo.Context, cfg config.InfoConfig) model.ConnMeta {
	h := c.Request().Header

	m := model.ConnMeta{}
	if cfg.ClientIPHeader != "" {
		m.ClientIP = h.Get(cfg.ClientIPHeader)
	}
	if m.ClientIP == "" {
		m.ClientIP = c.RealIP()
	}
	if cfg.CountryHeader != "" {
		m.Country = h.Get(cfg.CountryHeader)
	}
	if cfg.DatacenterHeader != "" {
		m.Datacenter = h.Get(cfg.DatacenterHeader)
	} else {
		m.Datacenter = rayColo(h.Get(headerCFRay))
	}
	return m
}

// rayColo extracts the datacenter code from a CF-Ray value ("<id>-<colo>").
func rayColo(ray string) string {
	i := strings.LastIndexByte(ray, '-')
	if i < 0 || i == len(ray)-1 {
		return ""
	}
	return ray[i+1:]
}
