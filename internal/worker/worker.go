// Package worker consumes fired queue jobs and persists their payloads.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/akinloluwami/openpanel/internal/models"
	"github.com/akinloluwami/openpanel/internal/queue"
)

// Store is the persistence surface the processor writes to.
type Store interface {
	InsertEvent(ctx context.Context, e *models.Event) error
	InsertSessionEnd(ctx context.Context, deviceID string, at time.Time) error
	InsertBotEvent(ctx context.Context, e models.BotEvent) error
}

// Processor handles jobs when they fire: createEvent payloads become event
// rows, createSessionEnd payloads become session close rows, createBotEvent
// payloads become bot rows. Failures are logged, not retried; redelivery is
// the queue's concern, not ours.
type Processor struct {
	store Store
	log   zerolog.Logger
}

// NewProcessor builds a processor.
func NewProcessor(store Store, log zerolog.Logger) *Processor {
	return &Processor{store: store, log: log}
}

// Process is the queue's ProcessFunc.
func (p *Processor) Process(ctx context.Context, job *queue.Job) {
	switch job.Data.Type {
	case queue.TypeCreateEvent:
		var event models.Event
		if err := job.Data.Decode(&event); err != nil {
			p.log.Error().Err(err).Str("job", job.ID).Msg("decode event payload")
			return
		}
		if err := p.store.InsertEvent(ctx, &event); err != nil {
			p.log.Error().Err(err).Str("job", job.ID).Str("event", event.Name).Msg("persist event")
			return
		}
		p.log.Debug().Str("event", event.Name).Str("device", event.DeviceID).Msg("event persisted")

	case queue.TypeCreateSessionEnd:
		var end models.SessionEnd
		if err := job.Data.Decode(&end); err != nil {
			p.log.Error().Err(err).Str("job", job.ID).Msg("decode sessionEnd payload")
			return
		}
		if err := p.store.InsertSessionEnd(ctx, end.DeviceID, time.Now().UTC()); err != nil {
			p.log.Error().Err(err).Str("job", job.ID).Msg("persist session end")
			return
		}
		p.log.Debug().Str("device", end.DeviceID).Msg("session closed")

	case queue.TypeCreateBotEvent:
		var bot models.BotEvent
		if err := job.Data.Decode(&bot); err != nil {
			p.log.Error().Err(err).Str("job", job.ID).Msg("decode bot payload")
			return
		}
		if err := p.store.InsertBotEvent(ctx, bot); err != nil {
			p.log.Error().Err(err).Str("job", job.ID).Msg("persist bot event")
			return
		}
		p.log.Debug().Str("bot", bot.Name).Str("project", bot.ProjectID).Msg("bot event recorded")

	default:
		p.log.Warn().Str("job", job.ID).Str("type", job.Data.Type).Msg("unknown job type")
	}
}
