// Package models holds site settings and per-person preferences.
package models

import (
	"encoding/json"
	"regexp"
	"strings"

	dErrors "familydir/pkg/domain-errors"
)

// KeySiteName is the app setting holding the directory's display name.
const KeySiteName = "site_name"

// DefaultSiteName is served when no site name has been stored.
const DefaultSiteName = "Family Directory"

// MaxSiteNameLength bounds the site name.
const MaxSiteNameLength = 120

// MaxPreferenceBytes bounds a stored preference value.
const MaxPreferenceBytes = 64 << 10

var preferenceKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)

// ParsePreferenceKey validates a preference key taken from a URL.
func ParsePreferenceKey(raw string) (string, error) {
	key := strings.TrimSpace(raw)
	if !preferenceKeyPattern.MatchString(key) {
		return "", dErrors.New(dErrors.CodeValidation, "preference key must be 1-64 letters, digits, '.', '_' or '-'")
	}
	return key, nil
}

// DecodeValue renders a stored text value as JSON when it parses, else as the
// raw string.
func DecodeValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}
