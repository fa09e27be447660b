package fingerprint

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// SaltStore persists the rotation history. Only the two most recent salts are
// ever read; older entries are pruned on rotation.
type SaltStore interface {
	// LatestSalts returns up to two salts, newest first.
	LatestSalts(ctx context.Context) ([]string, error)
	InsertSalt(ctx context.Context, salt string, createdAt time.Time) error
	PruneSalts(ctx context.Context, keep int) error
}

// Rotator rotates salts on a cron schedule and serves the active pair.
type Rotator struct {
	store SaltStore
	cron  *cron.Cron
	log   zerolog.Logger
}

// NewRotator bootstraps the salt history (two fresh salts when the store is
// empty, one when only a single salt exists) and returns a rotator ready to
// Start.
func NewRotator(ctx context.Context, store SaltStore, log zerolog.Logger) (*Rotator, error) {
	r := &Rotator{store: store, cron: cron.New(), log: log}

	existing, err := store.LatestSalts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load salts: %w", err)
	}
	for i := len(existing); i < 2; i++ {
		if err := r.rotate(ctx); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Start begins scheduled rotation. spec is a cron expression or descriptor
// such as "@daily".
func (r *Rotator) Start(spec string) error {
	_, err := r.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.rotate(ctx); err != nil {
			r.log.Error().Err(err).Msg("salt rotation failed")
			return
		}
		r.log.Info().Msg("salt rotated")
	})
	if err != nil {
		return fmt.Errorf("schedule salt rotation: %w", err)
	}
	r.cron.Start()
	return nil
}

// Stop halts scheduled rotation.
func (r *Rotator) Stop() {
	r.cron.Stop()
}

// Salts implements SaltProvider from the persisted history.
func (r *Rotator) Salts(ctx context.Context) (Salts, error) {
	latest, err := r.store.LatestSalts(ctx)
	if err != nil {
		return Salts{}, fmt.Errorf("load salts: %w", err)
	}
	if len(latest) < 2 {
		return Salts{}, fmt.Errorf("salt history incomplete: have %d, need 2", len(latest))
	}
	return Salts{Current: latest[0], Previous: latest[1]}, nil
}

func (r *Rotator) rotate(ctx context.Context) error {
	salt, err := randomSalt()
	if err != nil {
		return err
	}
	if err := r.store.InsertSalt(ctx, salt, time.Now().UTC()); err != nil {
		return fmt.Errorf("insert salt: %w", err)
	}
	if err := r.store.PruneSalts(ctx, 2); err != nil {
		return fmt.Errorf("prune salts: %w", err)
	}
	return nil
}

func randomSalt() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
