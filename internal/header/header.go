// Package header provides a case-insensitive header map with a defined
// iteration order.
//
// http.Header iterates in random order and canonicalizes keys, which makes
// the JSON snapshot of upstream headers and the expose list unstable. Map
// stores lower-cased keys in insertion order instead.
package header

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
)

// HopByHop lists headers that apply to a single connection and must not be
// forwarded by proxies (RFC 9110 section 7.6.1).
var HopByHop = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"TE",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// IsHopByHop reports whether name is a hop-by-hop header.
func IsHopByHop(name string) bool {
	for _, h := range HopByHop {
		if strings.EqualFold(h, name) {
			return true
		}
	}
	return false
}

// Map is an ordered, case-insensitive multimap of header fields.
// The zero value is not usable; create one with New or FromHTTP.
type Map struct {
	keys []string
	vals map[string][]string
}

// New returns an empty Map.
func New() *Map {
	return &Map{vals: make(map[string][]string)}
}

// FromHTTP copies h into a new Map. Keys are added in sorted order so that
// iteration is deterministic.
func FromHTTP(h http.Header) *Map {
	m := New()
	names := make([]string, 0, len(h))
	for k := range h {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	for _, k := range names {
		for _, v := range h[k] {
			m.Add(k, v)
		}
	}
	return m
}

// Get returns the values stored under key joined with ", ", and whether the
// key is present at all.
func (m *Map) Get(key string) (string, bool) {
	vals, ok := m.vals[strings.ToLower(key)]
	if !ok {
		return "", false
	}
	return strings.Join(vals, ", "), true
}

// Value is Get without the presence flag.
func (m *Map) Value(key string) string {
	v, _ := m.Get(key)
	return v
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.vals[strings.ToLower(key)]
	return ok
}

// Values returns a copy of the individual values stored under key.
func (m *Map) Values(key string) []string {
	vals := m.vals[strings.ToLower(key)]
	if vals == nil {
		return nil
	}
	return append([]string(nil), vals...)
}

// Set replaces any values under key with value. An existing key keeps its
// position in the iteration order.
func (m *Map) Set(key, value string) {
	k := strings.ToLower(key)
	if _, ok := m.vals[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.vals[k] = []string{value}
}

// Add appends value to the values under key.
func (m *Map) Add(key, value string) {
	k := strings.ToLower(key)
	if _, ok := m.vals[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.vals[k] = append(m.vals[k], value)
}

// Del removes key.
func (m *Map) Del(key string) {
	k := strings.ToLower(key)
	if _, ok := m.vals[k]; !ok {
		return
	}
	delete(m.vals, k)
	for i, name := range m.keys {
		if name == k {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the lower-cased keys in iteration order.
func (m *Map) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Len returns the number of distinct keys.
func (m *Map) Len() int {
	return len(m.keys)
}

// Each calls fn for every key in iteration order with its joined value.
func (m *Map) Each(fn func(key, value string)) {
	for _, k := range m.keys {
		fn(k, strings.Join(m.vals[k], ", "))
	}
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	c := New()
	for _, k := range m.keys {
		c.keys = append(c.keys, k)
		c.vals[k] = append([]string(nil), m.vals[k]...)
	}
	return c
}

// HTTP converts m to an http.Header, keeping every individual value.
func (m *Map) HTTP() http.Header {
	h := make(http.Header, len(m.keys))
	for _, k := range m.keys {
		for _, v := range m.vals[k] {
			h.Add(k, v)
		}
	}
	return h
}

// JSON encodes m as a JSON object in iteration order, one joined value per
// key.
func (m *Map) JSON() []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeString(&buf, k)
		buf.WriteByte(':')
		writeString(&buf, strings.Join(m.vals[k], ", "))
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// MarshalJSON implements json.Marshaler.
func (m *Map) MarshalJSON() ([]byte, error) {
	return m.JSON(), nil
}

// writeString appends s as a JSON string. Marshaling a string cannot fail.
func writeString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}
