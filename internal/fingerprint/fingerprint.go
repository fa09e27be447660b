// Package fingerprint derives stable per-visitor identities without cookies.
//
// A device ID is a pure function of (salt, origin, ip, user-agent). Salts
// rotate on a schedule to bound long-term re-identification; both the current
// and the previous salt are kept so a rotation mid-session does not break
// session continuity.
package fingerprint

import (
	"context"

	"github.com/google/uuid"
)

// namespace anchors the SHA1-derived UUIDs. Changing it invalidates every
// device ID ever issued.
var namespace = uuid.MustParse("b1e0b6a4-0f1c-4a52-9d6b-6c36d1d0a877")

// Salts is one rotation pair. Current signs new identities; Previous only
// matches sessions that straddle a rotation boundary.
type Salts struct {
	Current  string
	Previous string
}

// SaltProvider yields the active salt pair.
type SaltProvider interface {
	Salts(ctx context.Context) (Salts, error)
}

// DeviceID derives the visitor identity for one salt epoch. Deterministic:
// identical inputs always produce the identical ID, including empty inputs.
func DeviceID(salt, origin, ip, ua string) string {
	return uuid.NewSHA1(namespace, []byte(salt+":"+origin+":"+ip+":"+ua)).String()
}

// Identity is the two-epoch identity pair computed per request.
type Identity struct {
	Current  string
	Previous string
}

// Derive computes both epoch identities for a request.
func Derive(salts Salts, origin, ip, ua string) Identity {
	return Identity{
		Current:  DeviceID(salts.Current, origin, ip, ua),
		Previous: DeviceID(salts.Previous, origin, ip, ua),
	}
}
