package session

import (
	"github.com/akinloluwami/openpanel/internal/fingerprint"
	"github.com/akinloluwami/openpanel/internal/queue"
)

// State is the session status inferred from pending timers. It is never
// stored anywhere: the timers are the only source of truth.
type State int

const (
	// StateNew means no session timer exists for either epoch identity.
	StateNew State = iota

	// StateContinueCurrent means the current-epoch identity has an open
	// session.
	StateContinueCurrent

	// StateContinuePrevious means only the previous-epoch identity has an
	// open session: the salt rotated mid-session.
	StateContinuePrevious
)

// Decision is the reconstruction outcome. Timer is the session timer to
// renew; it is nil exactly when State is StateNew.
type Decision struct {
	DeviceID string
	State    State
	Timer    *queue.Job
}

// NewSession reports whether a new session (and its session_start event)
// must be created.
func (d Decision) NewSession() bool {
	return d.State == StateNew
}

// DecideSession infers the session state for one request from the set of
// delayed jobs. Pure: no clock, no I/O, independently testable.
//
// When timers exist for both epochs the current epoch wins; the previous
// timer is left alone and fires on its own schedule. Deterministic precedence
// beats trying to merge identities mid-flight.
func DecideSession(projectID string, id fingerprint.Identity, delayed []*queue.Job) Decision {
	current := queue.FindJobByPrefix(delayed, SessionEndPrefix(projectID, id.Current))
	previous := queue.FindJobByPrefix(delayed, SessionEndPrefix(projectID, id.Previous))

	switch {
	case current != nil:
		return Decision{DeviceID: id.Current, State: StateContinueCurrent, Timer: current}
	case previous != nil:
		return Decision{DeviceID: id.Previous, State: StateContinuePrevious, Timer: previous}
	default:
		return Decision{DeviceID: id.Current, State: StateNew}
	}
}
