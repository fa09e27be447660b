package models

import "time"

// ScreenView is the navigation event name. Screen views open pages: they carry
// the path other events inherit and they are the only events scheduled with a
// delay so their duration can be backfilled.
const ScreenView = "screen_view"

// SessionStart is the synthetic event emitted when a new session is detected.
const SessionStart = "session_start"

// TrackRequest is the POST /event payload.
// timestamp comes from the client clock and is untrusted; properties is
// free-form apart from path/referrer which the enricher consumes.
type TrackRequest struct {
	Name       string                 `json:"name"`
	ProfileID  string                 `json:"profileId,omitempty"`
	Timestamp  string                 `json:"timestamp"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Path returns the raw path property, usually a full URL from the SDK.
func (r *TrackRequest) Path() string {
	s, _ := r.Properties["path"].(string)
	return s
}

// Referrer returns the raw referrer property.
func (r *TrackRequest) Referrer() string {
	s, _ := r.Properties["referrer"].(string)
	return s
}

// RequestContext is the ambient request metadata used for classification and
// fingerprinting. Never persisted on its own.
type RequestContext struct {
	IP        string
	Origin    string
	UserAgent string
}

// Event is the normalized event pushed to the processing queue and persisted
// downstream. Absent fields are empty strings, never nulls.
type Event struct {
	Name       string                 `json:"name"`
	DeviceID   string                 `json:"deviceId"`
	ProfileID  string                 `json:"profileId"`
	ProjectID  string                 `json:"projectId"`
	Properties map[string]interface{} `json:"properties"`
	CreatedAt  time.Time              `json:"createdAt"`

	Country   string `json:"country"`
	City      string `json:"city"`
	Region    string `json:"region"`
	Continent string `json:"continent"`

	OS             string `json:"os"`
	OSVersion      string `json:"osVersion"`
	Browser        string `json:"browser"`
	BrowserVersion string `json:"browserVersion"`
	Device         string `json:"device"`
	Brand          string `json:"brand"`
	Model          string `json:"model"`

	// Duration is milliseconds spent on the previous event. It is backfilled
	// onto the still-pending previous event, never onto the one being emitted.
	Duration     int64  `json:"duration"`
	Path         string `json:"path"`
	Referrer     string `json:"referrer"`
	ReferrerName string `json:"referrerName"`
	ReferrerType string `json:"referrerType"`
}

// IsScreenView reports whether this is a navigation event.
func (e *Event) IsScreenView() bool {
	return e.Name == ScreenView
}

// SessionEnd is the payload of a sessionEnd job. The job's existence encodes
// the open session; the payload only needs the resolved device.
type SessionEnd struct {
	DeviceID string `json:"deviceId"`
}

// BotEvent records a request rejected as bot traffic. Kept separate from
// normal events so bot volume never pollutes session analytics.
type BotEvent struct {
	ProjectID string    `json:"projectId"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"createdAt"`
}
