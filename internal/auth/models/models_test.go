package models

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type DeviceSuite struct {
	suite.Suite
}

func TestDeviceSuite(t *testing.T) {
	suite.Run(t, new(DeviceSuite))
}

func (s *DeviceSuite) TestParseDevice() {
	s.Run("empty user agent returns unknown device", func() {
		d := ParseDevice("")
		s.Equal(Device{}, d)
		s.Equal("Unknown Device", d.DisplayName())
	})

	s.Run("chrome on desktop includes browser and OS", func() {
		d := ParseDevice("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		s.Equal("Chrome", d.Browser)
		s.False(d.Mobile)
		s.Contains(d.DisplayName(), "Chrome on ")
	})

	s.Run("firefox on linux", func() {
		d := ParseDevice("Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0")
		s.Equal("Firefox", d.Browser)
		s.Contains(d.DisplayName(), "Firefox on ")
	})

	s.Run("safari on iphone is mobile", func() {
		d := ParseDevice("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")
		s.True(d.Mobile)
		s.NotEqual("Unknown Device", d.DisplayName())
	})
}

func (s *DeviceSuite) TestDisplayNameFallbacks() {
	s.Equal("Unknown Browser on Linux", Device{OS: "Linux"}.DisplayName())
	s.Equal("Chrome on Unknown OS", Device{Browser: "Chrome"}.DisplayName())
}
