// Package geo resolves client IPs to coarse location via an external lookup
// service. The service is a collaborator: this package only defines the
// contract and an HTTP client for it.
package geo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// Location is the geo enrichment result. Unknown fields are empty strings.
type Location struct {
	Country   string `json:"country"`
	City      string `json:"city"`
	Region    string `json:"region"`
	Continent string `json:"continent"`
}

// Lookuper resolves an IP to a location. Implementations must treat an empty
// IP as "no location" rather than an error.
type Lookuper interface {
	Lookup(ctx context.Context, ip string) (Location, error)
}

// Client queries a remote geo service at GET {base}/{ip}.
type Client struct {
	base string
	http *http.Client
}

// NewClient builds a geo client. An empty base URL disables lookups: every
// call returns an empty Location.
func NewClient(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: 5 * time.Second},
	}
}

// Lookup resolves ip to a Location. Service unavailability is an error so the
// caller can fail the request instead of emitting half-enriched events.
func (c *Client) Lookup(ctx context.Context, ip string) (Location, error) {
	if ip == "" || c.base == "" {
		return Location{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/"+ip, nil)
	if err != nil {
		return Location{}, fmt.Errorf("geo request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("geo lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("geo lookup: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Location{}, fmt.Errorf("geo lookup: %w", err)
	}

	var loc Location
	if err := json.Unmarshal(body, &loc); err != nil {
		return Location{}, fmt.Errorf("geo lookup: decode: %w", err)
	}
	return loc, nil
}
