package service

import (
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/net/http/httpguts"

	"cors-anywhere-go/internal/header"
)

// OverrideHeader carries a JSON object of headers to set on the forwarded request.
const OverrideHeader = "x-cors-headers"

// excludedFromForward reports whether an inbound header must not reach the
// target: the caller's origin and referrer, platform-injected cf-* headers,
// forwarding chains, and the override carrier itself.
func excludedFromForward(name string) bool {
	n := strings.ToLower(name)
	return strings.HasPrefix(n, "origin") ||
		strings.Contains(n, "eferer") ||
		strings.HasPrefix(n, "cf-") ||
		strings.HasPrefix(n, "x-forw") ||
		n == OverrideHeader
}

// BuildOutboundHeaders derives the forwarded header set from the inbound
// headers. Overrides are applied last and may reintroduce excluded names.
// overrides may be nil.
func BuildOutboundHeaders(incoming, overrides *header.Map) *header.Map {
	out := header.New()
	for _, k := range incoming.Keys() {
		if excludedFromForward(k) {
			continue
		}
		for _, v := range incoming.Values(k) {
			out.Add(k, v)
		}
	}
	if overrides != nil {
		overrides.Each(out.Set)
	}
	return out
}

// ParseOverrides parses the value of the override header. Anything other
// than a JSON object yields nil; parse failures are not errors. Non-string
// values are stringified, and entries that are not valid header fields are
// dropped.
func ParseOverrides(raw string) *header.Map {
	if raw == "" || !gjson.Valid(raw) {
		return nil
	}
	obj := gjson.Parse(raw)
	if !obj.IsObject() {
		return nil
	}

	m := header.New()
	obj.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		v := value.String()
		if value.Type == gjson.Null {
			v = "null"
		}
		if !httpguts.ValidHeaderFieldName(name) || !httpguts.ValidHeaderFieldValue(v) {
			return true
		}
		m.Set(name, v)
		return true
	})
	return m
}
