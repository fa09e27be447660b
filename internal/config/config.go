package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config contains runtime configuration required by the service.
type Config struct {
	// DBURL is the Postgres connection string. Required.
	DBURL string `koanf:"db_url"`

	// ClientKeysRaw maps SDK clients to projects, "project1:key1,project2:key2".
	ClientKeysRaw string `koanf:"client_keys"`

	// GeoURL is the base URL of the ip->geo lookup service. Empty disables
	// geo enrichment (all geo fields stay empty strings).
	GeoURL string `koanf:"geo_url"`

	HTTPAddr string `koanf:"http_addr"`

	// SessionTimeout is the inactivity window after which a session closes.
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// SessionStartOffset is subtracted from the first event's timestamp when
	// emitting the synthetic session_start, so downstream consumers always
	// order session_start before the event that opened the session.
	SessionStartOffset time.Duration `koanf:"session_start_offset"`

	// SaltRotation is the cron spec for device-ID salt rotation.
	SaltRotation string `koanf:"salt_rotation"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
}

// SessionEndWindow is the sessionEnd timer delay: one second past the session
// timeout so a renewal arriving exactly at the boundary still wins.
func (c Config) SessionEndWindow() time.Duration {
	return c.SessionTimeout + time.Second
}

// ClientKeys parses ClientKeysRaw into apiKey -> projectID.
func (c Config) ClientKeys() (map[string]string, error) {
	keys := map[string]string{}
	raw := strings.TrimSpace(c.ClientKeysRaw)
	if raw != "" {
		for _, p := range strings.Split(raw, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			parts := strings.SplitN(p, ":", 2)
			if len(parts) != 2 {
				return nil, errors.New(`CLIENT_KEYS must be "project:key,project:key"`)
			}
			project := strings.TrimSpace(parts[0])
			key := strings.TrimSpace(parts[1])
			if project == "" || key == "" {
				return nil, errors.New(`CLIENT_KEYS must be "project:key,project:key"`)
			}
			keys[key] = project
		}
	}

	// Local dev fallback so the service runs out-of-the-box.
	if len(keys) == 0 {
		keys["openpanel-dev-key"] = "dev"
	}
	return keys, nil
}

func defaults() Config {
	return Config{
		HTTPAddr:           ":8080",
		SessionTimeout:     30 * time.Minute,
		SessionStartOffset: 10 * time.Millisecond,
		SaltRotation:       "@daily",
		LogLevel:           "info",
		LogFormat:          "json",
	}
}

// envKeys maps environment variables onto config paths. Unmapped variables
// are dropped so random environment noise never reaches the config.
var envKeys = map[string]string{
	"DB_URL":               "db_url",
	"CLIENT_KEYS":          "client_keys",
	"GEO_URL":              "geo_url",
	"HTTP_ADDR":            "http_addr",
	"SESSION_TIMEOUT":      "session_timeout",
	"SESSION_START_OFFSET": "session_start_offset",
	"SALT_ROTATION":        "salt_rotation",
	"LOG_LEVEL":            "log_level",
	"LOG_FORMAT":           "log_format",
}

// Load layers defaults under environment variables: ENV > defaults.
func Load() (Config, error) {
	k := koanf.New(".")

	def := defaults()
	if err := k.Load(structs.Provider(def, "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	provider := env.Provider("", ".", func(key string) string {
		return envKeys[key]
	})
	if err := k.Load(provider, nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.DBURL) == "" {
		return Config{}, errors.New("DB_URL required")
	}
	if cfg.SessionTimeout <= 0 {
		return Config{}, errors.New("SESSION_TIMEOUT must be positive")
	}
	return cfg, nil
}
