// Package ua extracts device information from user-agent strings.
//
// Exact UA parsing is a collaborator concern; Parser is the contract and
// TokenParser a conservative default good enough for the common families.
package ua

import "strings"

// Info is the device field set merged into normalized events. Unknown fields
// are empty strings.
type Info struct {
	OS             string `json:"os"`
	OSVersion      string `json:"osVersion"`
	Browser        string `json:"browser"`
	BrowserVersion string `json:"browserVersion"`
	Device         string `json:"device"`
	Brand          string `json:"brand"`
	Model          string `json:"model"`
}

// Parser turns a raw user-agent into device info.
type Parser interface {
	Parse(ua string) Info
}

// TokenParser recognizes the major OS and browser families by token matching.
type TokenParser struct{}

// Parse extracts device info. Ordering matters: Edge and Opera carry
// "Chrome", Chrome carries "Safari", iOS devices carry "Mac OS X".
func (TokenParser) Parse(raw string) Info {
	if raw == "" {
		return Info{}
	}
	var info Info

	switch {
	case strings.Contains(raw, "iPhone"):
		info.OS = "iOS"
		info.Device = "mobile"
		info.Brand = "Apple"
		info.Model = "iPhone"
	case strings.Contains(raw, "iPad"):
		info.OS = "iOS"
		info.Device = "tablet"
		info.Brand = "Apple"
		info.Model = "iPad"
	case strings.Contains(raw, "Android"):
		info.OS = "Android"
		info.OSVersion = versionAfter(raw, "Android ")
		if strings.Contains(raw, "Mobile") {
			info.Device = "mobile"
		} else {
			info.Device = "tablet"
		}
	case strings.Contains(raw, "Windows NT"):
		info.OS = "Windows"
		info.OSVersion = versionAfter(raw, "Windows NT ")
		info.Device = "desktop"
	case strings.Contains(raw, "Mac OS X"):
		info.OS = "macOS"
		info.OSVersion = strings.ReplaceAll(versionAfter(raw, "Mac OS X "), "_", ".")
		info.Device = "desktop"
		info.Brand = "Apple"
	case strings.Contains(raw, "CrOS"):
		info.OS = "Chrome OS"
		info.Device = "desktop"
	case strings.Contains(raw, "Linux"):
		info.OS = "Linux"
		info.Device = "desktop"
	}

	switch {
	case strings.Contains(raw, "Edg/"):
		info.Browser = "Edge"
		info.BrowserVersion = versionAfter(raw, "Edg/")
	case strings.Contains(raw, "OPR/"):
		info.Browser = "Opera"
		info.BrowserVersion = versionAfter(raw, "OPR/")
	case strings.Contains(raw, "SamsungBrowser/"):
		info.Browser = "Samsung Internet"
		info.BrowserVersion = versionAfter(raw, "SamsungBrowser/")
	case strings.Contains(raw, "Firefox/"):
		info.Browser = "Firefox"
		info.BrowserVersion = versionAfter(raw, "Firefox/")
	case strings.Contains(raw, "CriOS/"):
		info.Browser = "Chrome"
		info.BrowserVersion = versionAfter(raw, "CriOS/")
	case strings.Contains(raw, "Chrome/"):
		info.Browser = "Chrome"
		info.BrowserVersion = versionAfter(raw, "Chrome/")
	case strings.Contains(raw, "Safari/") && strings.Contains(raw, "Version/"):
		info.Browser = "Safari"
		info.BrowserVersion = versionAfter(raw, "Version/")
	}

	return info
}

// versionAfter returns the version-looking run following marker: digits,
// dots and underscores up to the next separator.
func versionAfter(raw, marker string) string {
	i := strings.Index(raw, marker)
	if i < 0 {
		return ""
	}
	rest := raw[i+len(marker):]
	end := strings.IndexFunc(rest, func(r rune) bool {
		return !(r >= '0' && r <= '9') && r != '.' && r != '_'
	})
	if end < 0 {
		return rest
	}
	return rest[:end]
}
