package service

import (
	"strings"

	"cors-anywhere-go/internal/header"
	"cors-anywhere-go/internal/model"
)

// ReceivedHeadersHeader carries a JSON snapshot of the target's response headers.
const ReceivedHeadersHeader = "cors-received-headers"

const (
	hdrAllowOrigin    = "Access-Control-Allow-Origin"
	hdrAllowMethods   = "Access-Control-Allow-Methods"
	hdrAllowHeaders   = "Access-Control-Allow-Headers"
	hdrExposeHeaders  = "Access-Control-Expose-Headers"
	hdrRequestMethod  = "Access-Control-Request-Method"
	hdrRequestHeaders = "Access-Control-Request-Headers"
	hdrNoSniff        = "X-Content-Type-Options"
)

// CORSRequest is the part of the inbound request that CORS rewriting reads.
type CORSRequest struct {
	Preflight         bool
	RequestMethod     string
	HasRequestMethod  bool
	RequestHeaders    string
	HasRequestHeaders bool
}

// CORSRequestFrom extracts the CORS-relevant fields of pr.
func CORSRequestFrom(pr *model.ProxyRequest) CORSRequest {
	cr := CORSRequest{Preflight: pr.Preflight()}
	if pr.Header != nil {
		cr.RequestMethod, cr.HasRequestMethod = pr.Header.Get(hdrRequestMethod)
		cr.RequestHeaders, cr.HasRequestHeaders = pr.Header.Get(hdrRequestHeaders)
	}
	return cr
}

// RewriteCORS sets the CORS response headers on dst. upstream is the target's
// original header set, or nil when nothing was forwarded. Every header is
// set rather than appended, so repeated calls with the same arguments leave
// dst unchanged.
func RewriteCORS(dst *header.Map, cr CORSRequest, upstream *header.Map) {
	dst.Set(hdrAllowOrigin, "*")

	if cr.Preflight {
		if cr.HasRequestMethod {
			dst.Set(hdrAllowMethods, cr.RequestMethod)
		}
		if cr.HasRequestHeaders && cr.RequestHeaders != "" {
			dst.Set(hdrAllowHeaders, cr.RequestHeaders)
		}
		dst.Del(hdrNoSniff)
		return
	}

	if upstream == nil {
		return
	}
	dst.Set(hdrExposeHeaders, strings.Join(ExposedHeaders(upstream), ","))
	dst.Set(ReceivedHeadersHeader, string(upstream.JSON()))
}

// ExposedHeaders lists every upstream header name followed by
// cors-received-headers.
func ExposedHeaders(upstream *header.Map) []string {
	return append(upstream.Keys(), ReceivedHeadersHeader)
}
