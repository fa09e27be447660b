package session

import (
	"fmt"
	"time"
)

// Job key layout: {kind}:{project}:{device}:{unixMillis}. The timestamp
// suffix keeps keys unique per scheduling instant while the prefix stays
// scannable per identity.

// SessionEndKey is the ID of the timer whose existence encodes an open
// session for device.
func SessionEndKey(projectID, deviceID string, at time.Time) string {
	return fmt.Sprintf("sessionEnd:%s:%s:%d", projectID, deviceID, at.UnixMilli())
}

// SessionEndPrefix matches any pending session timer for device.
func SessionEndPrefix(projectID, deviceID string) string {
	return fmt.Sprintf("sessionEnd:%s:%s:", projectID, deviceID)
}

// EventKey is the ID of the delayed job holding device's previous navigation
// event until its duration is known.
func EventKey(projectID, deviceID string, at time.Time) string {
	return fmt.Sprintf("event:%s:%s:%d", projectID, deviceID, at.UnixMilli())
}

// EventPrefix matches the pending previous event for device.
func EventPrefix(projectID, deviceID string) string {
	return fmt.Sprintf("event:%s:%s:", projectID, deviceID)
}
