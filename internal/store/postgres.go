package store

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akinloluwami/openpanel/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore is the durable persistence layer: processed events, bot
// events, session closes and the device-ID salt history.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema() error {
	_, err := p.pool.Exec(context.Background(), schemaSQL)
	return err
}

// Ping is used by the readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// InsertEvent persists a processed normalized event.
func (p *PostgresStore) InsertEvent(ctx context.Context, e *models.Event) error {
	if e.ProjectID == "" || e.Name == "" {
		return errors.New("projectID/name required")
	}

	props := e.Properties
	if props == nil {
		props = map[string]interface{}{}
	}
	propsJSON, err := json.Marshal(props)
	if err != nil {
		return err
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO events(
			id, name, device_id, profile_id, project_id, properties, created_at,
			country, city, region, continent,
			os, os_version, browser, browser_version, device, brand, model,
			duration, path, referrer, referrer_name, referrer_type
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
	`,
		uuid.New().String(), e.Name, e.DeviceID, e.ProfileID, e.ProjectID, propsJSON, e.CreatedAt,
		e.Country, e.City, e.Region, e.Continent,
		e.OS, e.OSVersion, e.Browser, e.BrowserVersion, e.Device, e.Brand, e.Model,
		e.Duration, e.Path, e.Referrer, e.ReferrerName, e.ReferrerType,
	)
	return err
}

// LatestScreenView returns the most recent navigation event for a profile in
// a project, or nil when the profile has none. The server-event path inherits
// its metadata from this row.
func (p *PostgresStore) LatestScreenView(ctx context.Context, projectID, profileID string) (*models.Event, error) {
	var e models.Event
	var propsJSON []byte
	err := p.pool.QueryRow(ctx, `
		SELECT name, device_id, profile_id, project_id, properties, created_at,
		       country, city, region, continent,
		       os, os_version, browser, browser_version, device, brand, model,
		       duration, path, referrer, referrer_name, referrer_type
		FROM events
		WHERE name = 'screen_view'
		  AND profile_id = $1
		  AND project_id = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, profileID, projectID).Scan(
		&e.Name, &e.DeviceID, &e.ProfileID, &e.ProjectID, &propsJSON, &e.CreatedAt,
		&e.Country, &e.City, &e.Region, &e.Continent,
		&e.OS, &e.OSVersion, &e.Browser, &e.BrowserVersion, &e.Device, &e.Brand, &e.Model,
		&e.Duration, &e.Path, &e.Referrer, &e.ReferrerName, &e.ReferrerType,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if len(propsJSON) > 0 {
		if err := json.Unmarshal(propsJSON, &e.Properties); err != nil {
			return nil, err
		}
	}
	return &e, nil
}

// InsertBotEvent records matched bot traffic, separate from normal events.
func (p *PostgresStore) InsertBotEvent(ctx context.Context, e models.BotEvent) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO bot_events(id, project_id, name, type, path, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, uuid.New().String(), e.ProjectID, e.Name, e.Type, e.Path, e.CreatedAt)
	return err
}

// InsertSessionEnd records a fired session close.
func (p *PostgresStore) InsertSessionEnd(ctx context.Context, deviceID string, at time.Time) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO session_ends(id, device_id, created_at)
		VALUES ($1,$2,$3)
	`, uuid.New().String(), deviceID, at)
	return err
}

// LatestSalts returns up to two salts, newest first.
func (p *PostgresStore) LatestSalts(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT salt FROM salts ORDER BY created_at DESC LIMIT 2
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var salts []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		salts = append(salts, s)
	}
	return salts, rows.Err()
}

// InsertSalt appends a fresh salt to the rotation history.
func (p *PostgresStore) InsertSalt(ctx context.Context, salt string, createdAt time.Time) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO salts(salt, created_at) VALUES ($1,$2)
	`, salt, createdAt)
	return err
}

// PruneSalts drops everything but the newest keep salts. Identities signed by
// pruned salts can no longer be matched, which is the point of rotation.
func (p *PostgresStore) PruneSalts(ctx context.Context, keep int) error {
	_, err := p.pool.Exec(ctx, `
		DELETE FROM salts
		WHERE salt NOT IN (
			SELECT salt FROM salts ORDER BY created_at DESC LIMIT $1
		)
	`, keep)
	return err
}
