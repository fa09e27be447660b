package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/203.0.113.9", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"country":"SE","city":"Stockholm","region":"AB","continent":"EU"}`))
	}))
	defer srv.Close()

	loc, err := NewClient(srv.URL).Lookup(context.Background(), "203.0.113.9")
	require.NoError(t, err)
	require.Equal(t, Location{Country: "SE", City: "Stockholm", Region: "AB", Continent: "EU"}, loc)
}

func TestClientLookupEmptyIP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("lookup service must not be called for an empty IP")
	}))
	defer srv.Close()

	loc, err := NewClient(srv.URL).Lookup(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, Location{}, loc)
}

func TestClientLookupServiceDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Lookup(context.Background(), "203.0.113.9")
	require.Error(t, err)
}

func TestClientDisabled(t *testing.T) {
	loc, err := NewClient("").Lookup(context.Background(), "203.0.113.9")
	require.NoError(t, err)
	require.Equal(t, Location{}, loc)
}
