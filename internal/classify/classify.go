// Package classify decides which ingestion path a request takes.
package classify

import (
	"github.com/akinloluwami/openpanel/internal/bots"
	"github.com/akinloluwami/openpanel/internal/models"
)

// Kind is the ingestion path for a request.
type Kind int

const (
	// KindBrowser is a genuine browser event: fingerprinting, timer lookups
	// and session reconstruction all apply.
	KindBrowser Kind = iota

	// KindServer is an SDK call made server-side: no network identity to
	// fingerprint, so the event inherits metadata from the profile's most
	// recent navigation event.
	KindServer

	// KindBot is matched bot traffic, recorded separately and dropped from
	// the session pipeline.
	KindBot
)

// Result is the classifier outcome. Bot is set only for KindBot.
type Result struct {
	Kind Kind
	Bot  *bots.Signature
}

// UserAgentSet reports whether a user agent header carries a real value.
// SDKs that proxy requests forward the literal string "undefined".
func UserAgentSet(ua string) bool {
	return ua != "" && ua != "undefined"
}

// Classify evaluates the three paths in order: server, bot, browser.
func Classify(rc models.RequestContext) Result {
	if rc.IP == "" && rc.Origin == "" && !UserAgentSet(rc.UserAgent) {
		return Result{Kind: KindServer}
	}
	if sig := bots.Match(rc.UserAgent); sig != nil {
		return Result{Kind: KindBot, Bot: sig}
	}
	return Result{Kind: KindBrowser}
}
