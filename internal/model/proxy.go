// Package model defines shared types for the proxy.
package model

import (
	"context"
	"io"
	"net/http"

	"cors-anywhere-go/internal/header"
)

// ProxyRequest is an inbound request as seen by the mediator.
type ProxyRequest struct {
	Ctx    context.Context
	Method string
	// Target is the decoded target URL; empty when the request carries none.
	Target        string
	Header        *header.Map
	Body          io.Reader
	ContentLength int64 // as in http.Request: 0 means no body, -1 unknown
}

// Preflight reports whether the request is a CORS preflight.
func (r *ProxyRequest) Preflight() bool {
	return r.Method == http.MethodOptions
}

// ForwardRequest is the request sent to the target URL.
type ForwardRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   io.Reader
	// ContentLength follows http.Request: 0 means no body, -1 unknown.
	ContentLength int64
}

// ProxyResponse is a fully buffered response ready to be written back.
// Body is nil for preflight responses.
type ProxyResponse struct {
	StatusCode int
	StatusText string
	Header     *header.Map
	Body       []byte
}

// ConnMeta carries optional connection metadata supplied by the hosting
// environment. Empty fields are unknown.
type ConnMeta struct {
	ClientIP   string
	Country    string
	Datacenter string
}
