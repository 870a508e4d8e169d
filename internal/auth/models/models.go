package models

import (
	"strings"
	"time"

	"github.com/mssola/useragent"

	id "familydir/pkg/domain"
)

// NeutralLinkMessage is returned for every link request so callers cannot
// probe which emails belong to the directory.
const NeutralLinkMessage = "If an account exists with this email, a login link has been sent."

// MagicLink is a pending single-use login link. The token itself is never
// stored, only its fingerprint.
type MagicLink struct {
	Email     string
	ExpiresAt time.Time
}

// Session is the outcome of a verified link.
type Session struct {
	Token     string
	ExpiresAt time.Time
	PersonID  id.PersonID
	Email     string
}

// Device is the browser and OS parsed from a User-Agent header.
type Device struct {
	Browser string
	OS      string
	Mobile  bool
}

// ParseDevice extracts browser and OS names from a User-Agent header.
func ParseDevice(userAgent string) Device {
	if strings.TrimSpace(userAgent) == "" {
		return Device{}
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	return Device{
		Browser: browser,
		OS:      ua.OSInfo().Name,
		Mobile:  ua.Mobile(),
	}
}

// DisplayName renders the device as "Browser on OS".
func (d Device) DisplayName() string {
	if d.Browser == "" && d.OS == "" {
		return "Unknown Device"
	}
	browser, os := d.Browser, d.OS
	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return browser + " on " + os
}
