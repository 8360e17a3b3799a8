package service

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrMalformedTarget is returned when the query string is not valid percent-encoding.
	ErrMalformedTarget = errors.New("malformed target URL encoding")
	// ErrInvalidTarget is returned when the decoded target is not an absolute http(s) URL.
	ErrInvalidTarget = errors.New("target must be an absolute http or https URL")
)

// DecodeTarget extracts the target URL from a raw query string. Callers
// double-encode the target, so it is percent-decoded twice. '+' is kept
// literally. An empty query yields an empty target and no error.
func DecodeTarget(rawQuery string) (string, error) {
	if rawQuery == "" {
		return "", nil
	}
	once, err := url.PathUnescape(rawQuery)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedTarget, err)
	}
	twice, err := url.PathUnescape(once)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedTarget, err)
	}
	return twice, nil
}

// ValidateTarget parses target and checks that it can be fetched.
func ValidateTarget(target string) (*url.URL, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}
	return u, nil
}
