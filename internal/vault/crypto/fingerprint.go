package crypto

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/mssola/useragent"
)

// Fingerprint is the best-effort device profile the vault key is bound to.
type Fingerprint struct {
	UserAgent       string
	Locale          string
	TZOffsetMinutes int
	Cores           int
	Screen          string
}

// HostFingerprint profiles the running host. userAgent, locale and screen
// come from configuration since a headless process cannot observe them.
func HostFingerprint(userAgent, locale, screen string) Fingerprint {
	_, offset := time.Now().Zone()
	if userAgent == "" {
		userAgent = fmt.Sprintf("zkvault (%s; %s)", runtime.GOOS, runtime.GOARCH)
	}
	return Fingerprint{
		UserAgent:       userAgent,
		Locale:          locale,
		TZOffsetMinutes: offset / 60,
		Cores:           runtime.NumCPU(),
		Screen:          screen,
	}
}

// String renders the key derivation input. The user agent is reduced to
// browser name, OS name and platform so browser updates keep the key stable.
func (f Fingerprint) String() string {
	parts := []string{
		normalizeUserAgent(f.UserAgent),
		strings.ToLower(f.Locale),
		fmt.Sprintf("tz=%d", f.TZOffsetMinutes),
		fmt.Sprintf("cores=%d", f.Cores),
	}
	if f.Screen != "" {
		parts = append(parts, "screen="+f.Screen)
	}
	return strings.Join(parts, "|")
}

func normalizeUserAgent(raw string) string {
	ua := useragent.New(raw)
	name, _ := ua.Browser()
	osName := ua.OSInfo().Name
	if name == "" && osName == "" {
		return raw
	}
	return strings.Join([]string{name, osName, ua.Platform()}, "/")
}
