package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/akinloluwami/openpanel/internal/classify"
	"github.com/akinloluwami/openpanel/internal/enrich"
	"github.com/akinloluwami/openpanel/internal/fingerprint"
	"github.com/akinloluwami/openpanel/internal/geo"
	"github.com/akinloluwami/openpanel/internal/models"
	"github.com/akinloluwami/openpanel/internal/queue"
	"github.com/akinloluwami/openpanel/internal/ua"
)

// queueName is the outbound processing queue all jobs land on.
const queueName = "events"

// EventStore is the storage surface the tracker needs: only the server-event
// path reads, everything else flows through the queue.
type EventStore interface {
	// LatestScreenView returns the most recent screen_view for the profile,
	// or nil when the profile has none.
	LatestScreenView(ctx context.Context, projectID, profileID string) (*models.Event, error)
}

// Config is the tracker's timing configuration.
type Config struct {
	// Timeout is the session inactivity window and the delay on pending
	// navigation events.
	Timeout time.Duration

	// EndWindow is the sessionEnd timer delay, slightly past Timeout.
	EndWindow time.Duration

	// StartOffset is subtracted from the first event's timestamp on the
	// synthetic session_start so it orders before the event downstream.
	StartOffset time.Duration
}

// Tracker runs the ingestion pipeline for one request: classify, fingerprint,
// reconstruct the session from pending timers, enrich, emit.
type Tracker struct {
	queue queue.Queue
	store EventStore
	geo   geo.Lookuper
	ua    ua.Parser
	salts fingerprint.SaltProvider
	cfg   Config
	log   zerolog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewTracker wires the pipeline's collaborators.
func NewTracker(q queue.Queue, store EventStore, g geo.Lookuper, parser ua.Parser, salts fingerprint.SaltProvider, cfg Config, log zerolog.Logger) *Tracker {
	return &Tracker{
		queue: q,
		store: store,
		geo:   g,
		ua:    parser,
		salts: salts,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
	}
}

// Result is what the HTTP layer needs: which path ran and, for browser
// events, the resolved device ID to hand back to the SDK.
type Result struct {
	Kind     classify.Kind
	DeviceID string
}

// Track processes one tracked event.
//
// Malformed input degrades to safe defaults and never fails; collaborator
// unavailability (queue, geo, salts, store) fails the request so "queue down"
// is never misread as "new session".
func (t *Tracker) Track(ctx context.Context, projectID string, req models.TrackRequest, rc models.RequestContext) (Result, error) {
	createdAt := parseTimestamp(req.Timestamp, t.now())

	cls := classify.Classify(rc)
	switch cls.Kind {
	case classify.KindServer:
		return t.trackServer(ctx, projectID, req, createdAt)
	case classify.KindBot:
		return t.trackBot(ctx, projectID, req, cls, createdAt)
	}

	salts, err := t.salts.Salts(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("resolve salts: %w", err)
	}
	identity := fingerprint.Derive(salts, rc.Origin, rc.IP, rc.UserAgent)

	// Geo lookup and the timer listing are independent; overlap them.
	var (
		location geo.Location
		delayed  []*queue.Job
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		location, err = t.geo.Lookup(gctx, rc.IP)
		return err
	})
	g.Go(func() error {
		var err error
		delayed, err = t.queue.Delayed(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("track event: %w", err)
	}

	decision := DecideSession(projectID, identity, delayed)
	now := t.now()

	if decision.NewSession() {
		end, err := queue.NewData(queue.TypeCreateSessionEnd, models.SessionEnd{DeviceID: decision.DeviceID})
		if err != nil {
			return Result{}, fmt.Errorf("encode sessionEnd: %w", err)
		}
		if _, err := t.queue.Add(ctx, queueName, end, queue.AddOptions{
			Delay: t.cfg.EndWindow,
			JobID: SessionEndKey(projectID, decision.DeviceID, now),
		}); err != nil {
			return Result{}, fmt.Errorf("schedule sessionEnd: %w", err)
		}
	} else {
		// Renew so the timer fires exactly at last-seen + window. The delay
		// is measured from enqueue time, hence elapsed + window.
		elapsed := now.Sub(decision.Timer.EnqueuedAt)
		if err := t.queue.ChangeDelay(ctx, decision.Timer.ID, elapsed+t.cfg.EndWindow); err != nil {
			return Result{}, fmt.Errorf("renew sessionEnd: %w", err)
		}
	}

	event := t.buildEvent(projectID, decision.DeviceID, req, createdAt, location, t.ua.Parse(rc.UserAgent))

	if err := t.settlePrevious(ctx, projectID, event, delayed); err != nil {
		return Result{}, err
	}

	if decision.NewSession() {
		start := *event
		start.Name = models.SessionStart
		start.CreatedAt = createdAt.Add(-t.cfg.StartOffset)
		if err := t.emit(ctx, &start, queue.AddOptions{}); err != nil {
			return Result{}, err
		}
	}

	// Only navigation events wait out the window; everything else flushes
	// immediately. The dedupe key absorbs at-least-once redelivery.
	opts := queue.AddOptions{}
	if event.IsScreenView() {
		opts.Delay = t.cfg.Timeout
		opts.JobID = EventKey(projectID, decision.DeviceID, now)
	}
	if err := t.emit(ctx, event, opts); err != nil {
		return Result{}, err
	}

	t.log.Debug().
		Str("project", projectID).
		Str("device", decision.DeviceID).
		Str("event", event.Name).
		Bool("new_session", decision.NewSession()).
		Msg("event tracked")

	return Result{Kind: classify.KindBrowser, DeviceID: decision.DeviceID}, nil
}

// settlePrevious applies the duration flow against the pending previous event
// for this identity: non-navigation events inherit its path, navigation
// events backfill its duration and force it to flush now.
func (t *Tracker) settlePrevious(ctx context.Context, projectID string, event *models.Event, delayed []*queue.Job) error {
	prior := queue.FindJobByPrefix(delayed, EventPrefix(projectID, event.DeviceID))
	if prior == nil || prior.Data.Type != queue.TypeCreateEvent {
		return nil
	}

	var prev models.Event
	if err := prior.Data.Decode(&prev); err != nil {
		return fmt.Errorf("decode pending event: %w", err)
	}

	duration := event.CreatedAt.Sub(prev.CreatedAt).Milliseconds()

	if !event.IsScreenView() {
		// Events between navigations belong to the page that is open.
		event.Path = prev.Path
		return nil
	}

	prev.Duration = duration
	data, err := queue.NewData(queue.TypeCreateEvent, &prev)
	if err != nil {
		return fmt.Errorf("encode pending event: %w", err)
	}
	if err := t.queue.UpdateData(ctx, prior.ID, data); err != nil {
		return fmt.Errorf("backfill duration: %w", err)
	}
	if err := t.queue.Promote(ctx, prior.ID); err != nil {
		return fmt.Errorf("promote pending event: %w", err)
	}
	return nil
}

// trackServer handles SDK calls with no network identity: the event inherits
// geo, device and session metadata from the profile's latest navigation
// event, with duration forced to zero. Timers are never touched.
func (t *Tracker) trackServer(ctx context.Context, projectID string, req models.TrackRequest, createdAt time.Time) (Result, error) {
	prior, err := t.store.LatestScreenView(ctx, projectID, req.ProfileID)
	if err != nil {
		return Result{}, fmt.Errorf("lookup prior navigation: %w", err)
	}
	if prior == nil {
		prior = &models.Event{}
	}

	props := req.Properties
	if props == nil {
		props = map[string]interface{}{}
	}

	event := &models.Event{
		Name:           req.Name,
		DeviceID:       prior.DeviceID,
		ProfileID:      req.ProfileID,
		ProjectID:      projectID,
		Properties:     props,
		CreatedAt:      createdAt,
		Country:        prior.Country,
		City:           prior.City,
		Region:         prior.Region,
		Continent:      prior.Continent,
		OS:             prior.OS,
		OSVersion:      prior.OSVersion,
		Browser:        prior.Browser,
		BrowserVersion: prior.BrowserVersion,
		Device:         prior.Device,
		Brand:          prior.Brand,
		Model:          prior.Model,
		Duration:       0,
		Path:           prior.Path,
		Referrer:       prior.Referrer,
		ReferrerName:   prior.ReferrerName,
		ReferrerType:   prior.ReferrerType,
	}

	if err := t.emit(ctx, event, queue.AddOptions{}); err != nil {
		return Result{}, err
	}
	return Result{Kind: classify.KindServer}, nil
}

// trackBot emits an immediate createBotEvent task, keyless: bot volume never
// needs dedupe or session timers.
func (t *Tracker) trackBot(ctx context.Context, projectID string, req models.TrackRequest, cls classify.Result, createdAt time.Time) (Result, error) {
	data, err := queue.NewData(queue.TypeCreateBotEvent, models.BotEvent{
		ProjectID: projectID,
		Name:      cls.Bot.Name,
		Type:      cls.Bot.Type,
		Path:      req.Path(),
		CreatedAt: createdAt,
	})
	if err != nil {
		return Result{}, fmt.Errorf("encode bot event: %w", err)
	}
	if _, err := t.queue.Add(ctx, queueName, data, queue.AddOptions{}); err != nil {
		return Result{}, fmt.Errorf("record bot event: %w", err)
	}
	return Result{Kind: classify.KindBot}, nil
}

// buildEvent assembles the enriched normalized event for the browser path.
func (t *Tracker) buildEvent(projectID, deviceID string, req models.TrackRequest, createdAt time.Time, location geo.Location, device ua.Info) *models.Event {
	rawPath := req.Path()
	parsed := enrich.ParsePath(rawPath)

	// Same-site referrers are noise; drop them before classification.
	var referrer *enrich.Referrer
	if raw := req.Referrer(); raw != "" && !enrich.SameHost(raw, rawPath) {
		referrer = enrich.ParseReferrer(raw)
	}
	utm := enrich.UTMReferrer(parsed.Query)

	props := make(map[string]interface{}, len(req.Properties)+2)
	for k, v := range req.Properties {
		if k == "path" || k == "referrer" {
			continue
		}
		props[k] = v
	}
	if parsed.Hash != "" {
		props["hash"] = parsed.Hash
	}
	if parsed.Query != nil {
		props["query"] = parsed.Query
	}

	event := &models.Event{
		Name:           req.Name,
		DeviceID:       deviceID,
		ProfileID:      req.ProfileID,
		ProjectID:      projectID,
		Properties:     props,
		CreatedAt:      createdAt,
		Country:        location.Country,
		City:           location.City,
		Region:         location.Region,
		Continent:      location.Continent,
		OS:             device.OS,
		OSVersion:      device.OSVersion,
		Browser:        device.Browser,
		BrowserVersion: device.BrowserVersion,
		Device:         device.Device,
		Brand:          device.Brand,
		Model:          device.Model,
		Duration:       0,
		Path:           parsed.Path,
	}
	if referrer != nil {
		event.Referrer = referrer.URL
		event.ReferrerName = referrer.Name
		event.ReferrerType = referrer.Type
	}
	if event.ReferrerName == "" && utm != nil {
		event.ReferrerName = utm.Name
		event.ReferrerType = utm.Type
	}
	return event
}

func (t *Tracker) emit(ctx context.Context, event *models.Event, opts queue.AddOptions) error {
	data, err := queue.NewData(queue.TypeCreateEvent, event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := t.queue.Add(ctx, queueName, data, opts); err != nil {
		return fmt.Errorf("enqueue %s: %w", event.Name, err)
	}
	return nil
}

// parseTimestamp parses the client timestamp, falling back to the server
// clock. Client clocks are untrusted but still preferred for inter-event
// durations.
func parseTimestamp(raw string, fallback time.Time) time.Time {
	if raw == "" {
		return fallback
	}
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts.UTC()
	}
	return fallback
}
