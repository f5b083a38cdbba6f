// Package device classifies request user agents into browser, OS and device type.
//
// Classification is a set of ordered rule tables evaluated top-down; the first
// matching rule wins. Order is part of the contract: Edge user agents also
// contain "chrome", and Chrome ones also contain "safari", so the more specific
// rules come first.
package device

import "strings"

// Browser labels.
const (
	BrowserEdge    = "Microsoft Edge"
	BrowserChrome  = "Google Chrome"
	BrowserFirefox = "Mozilla Firefox"
	BrowserSafari  = "Safari"
	BrowserOpera   = "Opera"
	Unknown        = "Unknown"
)

// Device types.
const (
	TypeMobile  = "mobile"
	TypeTablet  = "tablet"
	TypeDesktop = "desktop"
)

// Info is the classification of one user agent.
type Info struct {
	Browser    string `json:"browser"`
	OS         string `json:"os"`
	DeviceType string `json:"deviceType"`
}

// Rule maps a predicate over the lower-cased user agent to a label.
type Rule struct {
	Match func(ua string) bool
	Label string
}

func contains(markers ...string) func(string) bool {
	return func(ua string) bool {
		for _, m := range markers {
			if strings.Contains(ua, m) {
				return true
			}
		}
		return false
	}
}

func without(match func(string) bool, excluded ...string) func(string) bool {
	exclude := contains(excluded...)
	return func(ua string) bool {
		return match(ua) && !exclude(ua)
	}
}

// BrowserRules are evaluated in order.
var BrowserRules = []Rule{
	{Match: contains("edg/", "edge"), Label: BrowserEdge},
	{Match: without(contains("chrome"), "edg"), Label: BrowserChrome},
	{Match: contains("firefox"), Label: BrowserFirefox},
	{Match: without(contains("safari"), "chrome"), Label: BrowserSafari},
	{Match: contains("opera", "opr"), Label: BrowserOpera},
}

// OSRules are evaluated in order; version-specific Windows markers precede the generic one.
var OSRules = []Rule{
	{Match: contains("windows nt 10"), Label: "Windows 10/11"},
	{Match: contains("windows nt 6.3"), Label: "Windows 8.1"},
	{Match: contains("windows nt 6.2"), Label: "Windows 8"},
	{Match: contains("windows nt 6.1"), Label: "Windows 7"},
	{Match: contains("windows"), Label: "Windows"},
	{Match: contains("mac os x"), Label: "macOS"},
	{Match: contains("android"), Label: "Android"},
	{Match: contains("iphone", "ipad"), Label: "iOS"},
	{Match: contains("linux"), Label: "Linux"},
}

// TypeRules are evaluated in order; anything unmatched is a desktop.
var TypeRules = []Rule{
	{Match: contains("mobile", "android", "iphone"), Label: TypeMobile},
	{Match: contains("tablet", "ipad"), Label: TypeTablet},
}

func firstMatch(rules []Rule, ua, fallback string) string {
	for _, r := range rules {
		if r.Match(ua) {
			return r.Label
		}
	}
	return fallback
}

// Classify derives browser, OS and device type from a raw user-agent string.
func Classify(userAgent string) Info {
	ua := strings.ToLower(userAgent)
	return Info{
		Browser:    firstMatch(BrowserRules, ua, Unknown),
		OS:         firstMatch(OSRules, ua, Unknown),
		DeviceType: firstMatch(TypeRules, ua, TypeDesktop),
	}
}

// RequiresOTP reports whether the browser must pass a one-time code at login.
func RequiresOTP(browser string) bool {
	return browser == BrowserChrome
}

// HasDirectAccess reports whether the browser is issued a session without a second factor.
func HasDirectAccess(browser string) bool {
	return browser == BrowserEdge
}

// IsMobile reports whether the device is subject to the mobile access window.
func (i Info) IsMobile() bool {
	return i.DeviceType == TypeMobile
}
