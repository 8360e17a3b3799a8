package service

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"cors-anywhere-go/internal/header"
	"cors-anywhere-go/internal/model"
)

func TestCORSRequestFrom(t *testing.T) {
	h := header.New()
	h.Set("Access-Control-Request-Method", "PUT")
	pr := &model.ProxyRequest{Method: http.MethodOptions, Header: h}

	cr := CORSRequestFrom(pr)
	if !cr.Preflight {
		t.Error("Preflight = false for OPTIONS")
	}
	if !cr.HasRequestMethod || cr.RequestMethod != "PUT" {
		t.Errorf("RequestMethod = %q, %v; want PUT, true", cr.RequestMethod, cr.HasRequestMethod)
	}
	if cr.HasRequestHeaders {
		t.Error("HasRequestHeaders = true, want false")
	}

	if CORSRequestFrom(&model.ProxyRequest{Method: http.MethodGet}).Preflight {
		t.Error("Preflight = true for GET")
	}
}

func TestRewriteCORS_Preflight(t *testing.T) {
	dst := header.New()
	dst.Set("X-Content-Type-Options", "nosniff")
	dst.Set("Access-Control-Allow-Origin", "https://someone.example")

	RewriteCORS(dst, CORSRequest{
		Preflight:         true,
		RequestMethod:     "PUT",
		HasRequestMethod:  true,
		RequestHeaders:    "content-type,x-token",
		HasRequestHeaders: true,
	}, nil)

	if v := dst.Value("Access-Control-Allow-Origin"); v != "*" {
		t.Errorf("Allow-Origin = %q, want *", v)
	}
	if v := dst.Value("Access-Control-Allow-Methods"); v != "PUT" {
		t.Errorf("Allow-Methods = %q, want PUT", v)
	}
	if v := dst.Value("Access-Control-Allow-Headers"); v != "content-type,x-token" {
		t.Errorf("Allow-Headers = %q, want %q", v, "content-type,x-token")
	}
	if dst.Has("X-Content-Type-Options") {
		t.Error("X-Content-Type-Options not removed on preflight")
	}
	if dst.Has("Access-Control-Expose-Headers") || dst.Has(ReceivedHeadersHeader) {
		t.Error("preflight must not carry expose or received headers")
	}
}

func TestRewriteCORS_PreflightWithoutRequestHeaders(t *testing.T) {
	dst := header.New()
	RewriteCORS(dst, CORSRequest{Preflight: true}, nil)

	if dst.Has("Access-Control-Allow-Methods") {
		t.Error("Allow-Methods set without access-control-request-method")
	}
	if dst.Has("Access-Control-Allow-Headers") {
		t.Error("Allow-Headers set without access-control-request-headers")
	}
	if v := dst.Value("Access-Control-Allow-Origin"); v != "*" {
		t.Errorf("Allow-Origin = %q, want *", v)
	}
}

func TestRewriteCORS_Forward(t *testing.T) {
	upstream := header.FromHTTP(http.Header{
		"Content-Type":           {"application/json"},
		"X-Rate-Remaining":       {"42"},
		"X-Content-Type-Options": {"nosniff"},
	})
	dst := upstream.Clone()

	RewriteCORS(dst, CORSRequest{}, upstream)

	if v := dst.Value("Access-Control-Allow-Origin"); v != "*" {
		t.Errorf("Allow-Origin = %q, want *", v)
	}
	wantExpose := "content-type,x-content-type-options,x-rate-remaining,cors-received-headers"
	if v := dst.Value("Access-Control-Expose-Headers"); v != wantExpose {
		t.Errorf("Expose-Headers = %q, want %q", v, wantExpose)
	}
	if !dst.Has("X-Content-Type-Options") {
		t.Error("X-Content-Type-Options removed on a non-preflight response")
	}

	var received map[string]string
	if err := json.Unmarshal([]byte(dst.Value(ReceivedHeadersHeader)), &received); err != nil {
		t.Fatalf("cors-received-headers is not JSON: %v", err)
	}
	want := map[string]string{
		"content-type":           "application/json",
		"x-content-type-options": "nosniff",
		"x-rate-remaining":       "42",
	}
	if !reflect.DeepEqual(received, want) {
		t.Errorf("cors-received-headers = %v, want %v", received, want)
	}
}

func TestRewriteCORS_ExposeContainsEveryUpstreamKey(t *testing.T) {
	sets := []http.Header{
		{},
		{"A": {"1"}},
		{"Set-Cookie": {"a=1", "b=2"}, "Etag": {`"x"`}, "Access-Control-Allow-Origin": {"https://o.example"}},
	}
	for _, h := range sets {
		upstream := header.FromHTTP(h)
		dst := upstream.Clone()
		RewriteCORS(dst, CORSRequest{}, upstream)

		exposed := strings.Split(dst.Value("Access-Control-Expose-Headers"), ",")
		for _, k := range upstream.Keys() {
			if !contains(exposed, k) {
				t.Errorf("expose list %v missing upstream key %q", exposed, k)
			}
		}
		if exposed[len(exposed)-1] != ReceivedHeadersHeader {
			t.Errorf("expose list %v does not end with %q", exposed, ReceivedHeadersHeader)
		}
	}
}

func TestRewriteCORS_Idempotent(t *testing.T) {
	requests := []CORSRequest{
		{},
		{Preflight: true, RequestMethod: "DELETE", HasRequestMethod: true, RequestHeaders: "x-a", HasRequestHeaders: true},
	}
	upstream := header.FromHTTP(http.Header{"Content-Type": {"text/plain"}, "Vary": {"Origin", "Accept"}})

	for _, cr := range requests {
		var up *header.Map
		if !cr.Preflight {
			up = upstream
		}
		once := upstream.Clone()
		RewriteCORS(once, cr, up)
		twice := upstream.Clone()
		RewriteCORS(twice, cr, up)
		RewriteCORS(twice, cr, up)

		if string(once.JSON()) != string(twice.JSON()) {
			t.Errorf("preflight=%v: once = %s, twice = %s", cr.Preflight, once.JSON(), twice.JSON())
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
