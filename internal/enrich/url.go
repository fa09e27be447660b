// Package enrich turns raw event properties into the normalized field set:
// URL decomposition, referrer classification, and geo/device merging.
package enrich

import "net/url"

// ParsedPath is the decomposed page URL.
type ParsedPath struct {
	Path  string
	Query map[string]string
	Hash  string
}

// ParsePath decomposes a full page URL into path, query map and hash.
// Malformed or relative input degrades to the raw string as path with no
// query or hash; it is never an error.
func ParsePath(raw string) ParsedPath {
	if raw == "" {
		return ParsedPath{}
	}

	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return ParsedPath{Path: raw}
	}

	var query map[string]string
	if values := u.Query(); len(values) > 0 {
		query = make(map[string]string, len(values))
		for key := range values {
			query[key] = values.Get(key)
		}
	}

	return ParsedPath{
		Path:  u.Path,
		Query: query,
		Hash:  u.Fragment,
	}
}

// SameHost reports whether two URLs share a hostname. Unparseable or empty
// input is never the same host.
func SameHost(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	ua, err := url.Parse(a)
	if err != nil || ua.Hostname() == "" {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil || ub.Hostname() == "" {
		return false
	}
	return ua.Hostname() == ub.Hostname()
}
