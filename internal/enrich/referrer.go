package enrich

import (
	"net/url"
	"strings"
)

// Referrer is a classified traffic source.
type Referrer struct {
	URL  string
	Name string
	Type string
}

type knownReferrer struct {
	name string
	kind string
}

// knownReferrers maps hostname suffixes to sources. Matching strips a
// leading "www." and then compares host suffixes, so "news.ycombinator.com"
// matches the "ycombinator.com" entry.
var knownReferrers = map[string]knownReferrer{
	"google.com":        {"Google", "search"},
	"bing.com":          {"Bing", "search"},
	"duckduckgo.com":    {"DuckDuckGo", "search"},
	"search.yahoo.com":  {"Yahoo", "search"},
	"baidu.com":         {"Baidu", "search"},
	"yandex.ru":         {"Yandex", "search"},
	"ecosia.org":        {"Ecosia", "search"},
	"facebook.com":      {"Facebook", "social"},
	"instagram.com":     {"Instagram", "social"},
	"twitter.com":       {"Twitter", "social"},
	"t.co":              {"Twitter", "social"},
	"x.com":             {"Twitter", "social"},
	"linkedin.com":      {"LinkedIn", "social"},
	"reddit.com":        {"Reddit", "social"},
	"ycombinator.com":   {"Hacker News", "social"},
	"youtube.com":       {"YouTube", "social"},
	"tiktok.com":        {"TikTok", "social"},
	"pinterest.com":     {"Pinterest", "social"},
	"mail.google.com":   {"Gmail", "email"},
	"outlook.live.com":  {"Outlook", "email"},
	"github.com":        {"GitHub", "unknown"},
	"producthunt.com":   {"Product Hunt", "unknown"},
	"substack.com":      {"Substack", "unknown"},
	"medium.com":        {"Medium", "unknown"},
	"slack.com":         {"Slack", "unknown"},
	"statics.teams.cdn.office.net": {"Microsoft Teams", "unknown"},
}

// ParseReferrer classifies a referrer URL. Unknown hosts keep the URL with
// empty name/type so the UTM fallback can fill them in. Empty or unparseable
// input yields nil.
func ParseReferrer(raw string) *Referrer {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return nil
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	for suffix, known := range knownReferrers {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return &Referrer{URL: raw, Name: known.name, Type: known.kind}
		}
	}
	return &Referrer{URL: raw}
}

// UTMReferrer derives a traffic source from query parameters when the
// referrer header gave nothing usable. utm_source wins over ref.
func UTMReferrer(query map[string]string) *Referrer {
	if query == nil {
		return nil
	}
	if source := query["utm_source"]; source != "" {
		kind := query["utm_medium"]
		if kind == "" {
			kind = "utm"
		}
		return &Referrer{Name: source, Type: kind}
	}
	if ref := query["ref"]; ref != "" {
		return &Referrer{Name: ref, Type: "ref"}
	}
	return nil
}
