package model

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Target is an immutable value object representing a validated analysis input.
// It is produced by ParseTarget and carries everything the synthesizer needs.
type Target struct {
	url               string // Normalized absolute URL
	hostname          string // Lowercased host without port
	registrableDomain string // eTLD+1, or the hostname when none exists
}

// ParseTarget validates user input and extracts the hostname.
//
// The input is trimmed first. Blank input fails with ErrEmptyInput. Input
// that does not parse as an absolute URL with both a scheme and a host fails
// with ErrMalformedURL. On success the URL is normalized (lowercase scheme
// and host) and the hostname is extracted.
func ParseTarget(raw string) (Target, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Target{}, ErrEmptyInput
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %w", ErrMalformedURL, err)
	}
	if u.Scheme == "" || u.Host == "" || u.Opaque != "" {
		return Target{}, fmt.Errorf("%w: %q needs a scheme and a host", ErrMalformedURL, trimmed)
	}

	hostname := strings.ToLower(u.Hostname())
	if hostname == "" {
		return Target{}, fmt.Errorf("%w: %q has an empty host", ErrMalformedURL, trimmed)
	}

	u.Host = strings.ToLower(u.Host)
	if u.Path == "" && u.RawQuery == "" && u.Fragment == "" {
		u.Path = "/"
	}

	return Target{
		url:               u.String(),
		hostname:          hostname,
		registrableDomain: registrableDomain(hostname),
	}, nil
}

// MustParseTarget parses a target or panics if invalid.
// Use only for known-valid inputs in tests or initialization.
func MustParseTarget(raw string) Target {
	t, err := ParseTarget(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// registrableDomain returns the effective TLD plus one label.
// IP literals and hosts without a public suffix are returned unchanged.
func registrableDomain(hostname string) string {
	if net.ParseIP(hostname) != nil {
		return hostname
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(hostname)
	if err != nil {
		return hostname
	}
	return domain
}

// URL returns the normalized URL.
func (t Target) URL() string {
	return t.url
}

// Hostname returns the lowercased hostname without port.
func (t Target) Hostname() string {
	return t.hostname
}

// RegistrableDomain returns the eTLD+1 of the hostname.
func (t Target) RegistrableDomain() string {
	return t.registrableDomain
}

// IsZero returns true if the target was never parsed.
func (t Target) IsZero() bool {
	return t.url == ""
}

// String returns the normalized URL.
func (t Target) String() string {
	return t.url
}
