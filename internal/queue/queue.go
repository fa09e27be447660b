// Package queue defines the delayed-job capability the ingestion pipeline is
// built on, plus an in-memory implementation.
//
// The pipeline never stores session state of its own: a pending sessionEnd
// job *is* the open session, and a pending event job carries the previous
// event until its duration is known. All the pipeline needs from a queue is
// the contract below; a broker-backed implementation can replace Memory
// without touching the callers.
package queue

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Logical job types carried in Data.Type.
const (
	TypeCreateEvent      = "createEvent"
	TypeCreateSessionEnd = "createSessionEnd"
	TypeCreateBotEvent   = "createBotEvent"
)

// ErrJobNotFound is returned by mutations when the job has already fired or
// never existed. Callers racing on the same identity must expect it.
var ErrJobNotFound = errors.New("queue: job not found")

// Data is the typed job payload.
type Data struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewData marshals payload into a typed job payload.
func NewData(typ string, payload interface{}) (Data, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Data{}, err
	}
	return Data{Type: typ, Payload: raw}, nil
}

// Decode unmarshals the payload into out.
func (d Data) Decode(out interface{}) error {
	return json.Unmarshal(d.Payload, out)
}

// Job is a snapshot of a queued job. Mutations go through the Queue by ID;
// holding a Job grants no exclusive access.
type Job struct {
	ID   string
	Name string
	Data Data

	// Delay is measured from EnqueuedAt. The job fires at EnqueuedAt+Delay.
	Delay      time.Duration
	EnqueuedAt time.Time
}

// AddOptions controls scheduling of a new job.
type AddOptions struct {
	// Delay defers execution. Zero means immediate.
	Delay time.Duration

	// JobID makes the add idempotent: re-adding an existing ID returns the
	// existing job untouched. Empty means always enqueue.
	JobID string
}

// Queue is the delayed-job capability.
//
// Unavailability is an error on every method; callers must fail their request
// rather than guess at session state.
type Queue interface {
	Add(ctx context.Context, name string, data Data, opts AddOptions) (*Job, error)

	// Delayed lists all currently-delayed jobs. Volume is bounded by the
	// number of open sessions, not total event throughput, which is what
	// makes prefix scanning acceptable.
	Delayed(ctx context.Context) ([]*Job, error)

	// ChangeDelay re-schedules a delayed job. The new delay is measured from
	// the job's enqueue time, so renewing to "last seen + window" means
	// passing (now - EnqueuedAt) + window.
	ChangeDelay(ctx context.Context, jobID string, delay time.Duration) error

	// Promote forces a delayed job to execute now, bypassing its remaining
	// delay.
	Promote(ctx context.Context, jobID string) error

	// UpdateData replaces a delayed job's payload in place.
	UpdateData(ctx context.Context, jobID string, data Data) error
}

// FindJobByPrefix returns the first job whose ID starts with prefix. Keys are
// built to be unique per identity and epoch, so at most one job matches.
func FindJobByPrefix(jobs []*Job, prefix string) *Job {
	for _, j := range jobs {
		if strings.HasPrefix(j.ID, prefix) {
			return j
		}
	}
	return nil
}
