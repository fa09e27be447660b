// Package bots matches user-agent strings against known bot signatures.
package bots

import "strings"

// Signature describes a known bot.
type Signature struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Match string `json:"match"`
}

// signatures is ordered most-specific first; matching is substring,
// case-insensitive. New entries go before the generic catch-alls at the end.
var signatures = []Signature{
	{Name: "Googlebot", Type: "crawler", Match: "googlebot"},
	{Name: "Bingbot", Type: "crawler", Match: "bingbot"},
	{Name: "DuckDuckBot", Type: "crawler", Match: "duckduckbot"},
	{Name: "Baiduspider", Type: "crawler", Match: "baiduspider"},
	{Name: "YandexBot", Type: "crawler", Match: "yandexbot"},
	{Name: "Applebot", Type: "crawler", Match: "applebot"},
	{Name: "AhrefsBot", Type: "crawler", Match: "ahrefsbot"},
	{Name: "SemrushBot", Type: "crawler", Match: "semrushbot"},
	{Name: "MJ12bot", Type: "crawler", Match: "mj12bot"},
	{Name: "DotBot", Type: "crawler", Match: "dotbot"},
	{Name: "PetalBot", Type: "crawler", Match: "petalbot"},
	{Name: "Facebook", Type: "preview", Match: "facebookexternalhit"},
	{Name: "Twitterbot", Type: "preview", Match: "twitterbot"},
	{Name: "LinkedInBot", Type: "preview", Match: "linkedinbot"},
	{Name: "Slackbot", Type: "preview", Match: "slackbot"},
	{Name: "TelegramBot", Type: "preview", Match: "telegrambot"},
	{Name: "Discordbot", Type: "preview", Match: "discordbot"},
	{Name: "WhatsApp", Type: "preview", Match: "whatsapp"},
	{Name: "UptimeRobot", Type: "monitor", Match: "uptimerobot"},
	{Name: "Pingdom", Type: "monitor", Match: "pingdom"},
	{Name: "StatusCake", Type: "monitor", Match: "statuscake"},
	{Name: "Site24x7", Type: "monitor", Match: "site24x7"},
	{Name: "Lighthouse", Type: "tool", Match: "chrome-lighthouse"},
	{Name: "HeadlessChrome", Type: "tool", Match: "headlesschrome"},
	{Name: "curl", Type: "tool", Match: "curl/"},
	{Name: "wget", Type: "tool", Match: "wget/"},
	{Name: "python-requests", Type: "tool", Match: "python-requests"},
	{Name: "Go-http-client", Type: "tool", Match: "go-http-client"},
	// Generic catch-alls, kept last so named bots win.
	{Name: "Unknown spider", Type: "crawler", Match: "spider"},
	{Name: "Unknown crawler", Type: "crawler", Match: "crawler"},
	{Name: "Unknown bot", Type: "crawler", Match: "bot/"},
}

// Match returns the bot signature for a user agent, or nil for genuine
// browser traffic.
func Match(ua string) *Signature {
	if ua == "" {
		return nil
	}
	lower := strings.ToLower(ua)
	for i := range signatures {
		if strings.Contains(lower, signatures[i].Match) {
			return &signatures[i]
		}
	}
	return nil
}
