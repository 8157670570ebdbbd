package audit

import (
	"strings"

	"github.com/mssola/useragent"
)

// DeviceName extracts a human-readable device display name from a
// User-Agent string for the security view.
// Returns format: "Browser on OS" (e.g., "Chrome on macOS", "Safari on iOS").
func DeviceName(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgentString)

	browser, _ := ua.Browser()
	os := ua.OS()

	if ua.Mobile() {
		platform := ua.Platform()
		if platform != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}

	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}

	return strings.TrimSpace(browser + " on " + os)
}
