// Package policy decides whether a request may be proxied, based on the
// caller's Origin header and the target URL.
package policy

import (
	"fmt"
	"regexp"

	"cors-anywhere-go/internal/config"
)

// Filter holds the compiled allow-list and deny-list. It is immutable after
// construction and safe for concurrent use.
type Filter struct {
	allowOrigins       []*regexp.Regexp
	denyTargets        []*regexp.Regexp
	allowMissingOrigin bool
}

// New compiles the policy patterns from cfg.
func New(cfg *config.Config) (*Filter, error) {
	allow, err := compileAll(cfg.Policy.AllowOrigins)
	if err != nil {
		return nil, fmt.Errorf("policy: allow_origins: %w", err)
	}
	deny, err := compileAll(cfg.Policy.DenyTargets)
	if err != nil {
		return nil, fmt.Errorf("policy: deny_targets: %w", err)
	}
	return &Filter{
		allowOrigins:       allow,
		denyTargets:        deny,
		allowMissingOrigin: cfg.Policy.MissingOriginAllowed(),
	}, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Allowed reports whether a request for target from origin may proceed.
// An empty target means the request carries none and is never denied.
func (f *Filter) Allowed(target, origin string, hasOrigin bool) bool {
	return !f.TargetDenied(target) && f.OriginAllowed(origin, hasOrigin)
}

// TargetDenied reports whether any deny pattern occurs in target.
func (f *Filter) TargetDenied(target string) bool {
	if target == "" {
		return false
	}
	return matchAny(f.denyTargets, target)
}

// OriginAllowed reports whether origin matches the allow-list. A missing
// Origin header is decided by the allow_missing_origin setting.
func (f *Filter) OriginAllowed(origin string, hasOrigin bool) bool {
	if !hasOrigin {
		return f.allowMissingOrigin
	}
	return matchAny(f.allowOrigins, origin)
}

// matchAny is unanchored: a pattern matches if it occurs anywhere in s.
func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
