package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

////////////////////////////////////////////////////////////////////////////////
// INTEGRATION TEST SUITE
//
// These tests validate the service end-to-end:
//
//   SDK → HTTP API → Auth → Classifier → Session pipeline → Response
//
// The service must already be running (for example via docker compose).
//
// Optional environment overrides:
//
//   BASE_URL   default http://localhost:8080
//   CLIENT_KEY default openpanel-dev-key
//
////////////////////////////////////////////////////////////////////////////////

func baseURL() string {
	if v := os.Getenv("BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

// clientKey returns the SDK client key for the dev project.
func clientKey() string {
	if v := os.Getenv("CLIENT_KEY"); v != "" {
		return v
	}
	return "openpanel-dev-key"
}

// unique generates a unique string so tests never collide with previous runs.
func unique(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

////////////////////////////////////////////////////////////////////////////////
// SERVICE READINESS HELPER
//
// waitReady polls /ready until DB + server are ready.
// Prevents flaky failures when containers are still booting.
////////////////////////////////////////////////////////////////////////////////

func waitReady(t *testing.T) {
	t.Helper()

	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(30 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL() + "/ready")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(300 * time.Millisecond)
	}

	t.Fatalf("service not ready after 30s")
}

////////////////////////////////////////////////////////////////////////////////
// GENERIC HTTP HELPERS
////////////////////////////////////////////////////////////////////////////////

// httpGet performs a GET request with optional client key.
func httpGet(t *testing.T, key string, path string) (int, []byte) {
	t.Helper()

	req, _ := http.NewRequest("GET", baseURL()+path, nil)
	if key != "" {
		req.Header.Set("openpanel-client-id", key)
	}

	resp, err := (&http.Client{Timeout: 5 * time.Second}).Do(req)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}

// postEvent performs a POST /event with JSON body and optional browser
// headers. Empty header values are omitted so server-style requests carry no
// network identity at all.
func postEvent(t *testing.T, key string, payload any, headers map[string]string) (int, []byte) {
	t.Helper()

	b, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", baseURL()+"/event", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("openpanel-client-id", key)
	}
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := (&http.Client{Timeout: 5 * time.Second}).Do(req)
	if err != nil {
		t.Fatalf("POST /event failed: %v", err)
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

// browserHeaders is a plausible desktop Chrome request origin.
func browserHeaders(ip string) map[string]string {
	return map[string]string{
		"X-Forwarded-For": ip,
		"Origin":          "https://app.example.com",
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

func screenView(path string) map[string]any {
	return map[string]any{
		"name":      "screen_view",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"properties": map[string]any{
			"path": "https://app.example.com" + path,
		},
	}
}

////////////////////////////////////////////////////////////////////////////////
// HEALTH & READINESS TESTS
////////////////////////////////////////////////////////////////////////////////

// Health endpoint = liveness check (server process running).
func TestHealth_ReturnsOK(t *testing.T) {
	s, _ := httpGet(t, "", "/health")
	if s != http.StatusOK {
		t.Fatalf("health expected 200 got %d", s)
	}
}

// Ready endpoint = dependency readiness (DB reachable).
func TestReady_ReturnsOK(t *testing.T) {
	waitReady(t)
	s, _ := httpGet(t, "", "/ready")
	if s != http.StatusOK {
		t.Fatalf("ready expected 200 got %d", s)
	}
}

////////////////////////////////////////////////////////////////////////////////
// EVENT CONTRACT TESTS
////////////////////////////////////////////////////////////////////////////////

// Request without a client key must be rejected.
func TestEvent_UnauthorizedWithoutClientKey(t *testing.T) {
	waitReady(t)

	s, _ := postEvent(t, "", screenView("/"), browserHeaders("198.51.100.1"))
	if s != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", s)
	}
}

// Missing event name should return 400.
func TestEvent_BadRequestOnMissingName(t *testing.T) {
	waitReady(t)

	payload := map[string]any{"timestamp": time.Now().UTC().Format(time.RFC3339Nano)}
	s, _ := postEvent(t, clientKey(), payload, browserHeaders("198.51.100.1"))

	if s != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", s)
	}
}

////////////////////////////////////////////////////////////////////////////////
// CORE SYSTEM BEHAVIOR TESTS
////////////////////////////////////////////////////////////////////////////////

// Browser events are accepted with the resolved device ID as the body, and
// the same request origin always resolves to the same device.
func TestEvent_BrowserReturnsStableDeviceID(t *testing.T) {
	waitReady(t)

	ip := fmt.Sprintf("203.0.113.%d", time.Now().UnixNano()%200+1)

	s1, b1 := postEvent(t, clientKey(), screenView("/"), browserHeaders(ip))
	if s1 != http.StatusAccepted {
		t.Fatalf("expected 202 got %d", s1)
	}
	if strings.TrimSpace(string(b1)) == "" {
		t.Fatal("expected device id in response body")
	}

	s2, b2 := postEvent(t, clientKey(), screenView("/pricing"), browserHeaders(ip))
	if s2 != http.StatusAccepted {
		t.Fatalf("expected 202 got %d", s2)
	}
	if string(b1) != string(b2) {
		t.Fatalf("device id changed between requests: %q vs %q", b1, b2)
	}
}

// Server-side SDK events carry no network identity and get an empty 200.
func TestEvent_ServerReturnsEmptyOK(t *testing.T) {
	waitReady(t)

	payload := map[string]any{
		"name":      unique("purchase"),
		"profileId": unique("user"),
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}

	s, b := postEvent(t, clientKey(), payload, nil)
	if s != http.StatusOK {
		t.Fatalf("expected 200 got %d", s)
	}
	if strings.TrimSpace(string(b)) != "" {
		t.Fatalf("expected empty body got %q", b)
	}
}

// Crawler traffic is recorded separately and never opens a session.
func TestEvent_BotReturnsEmptyOK(t *testing.T) {
	waitReady(t)

	headers := browserHeaders("198.51.100.7")
	headers["User-Agent"] = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"

	s, b := postEvent(t, clientKey(), screenView("/"), headers)
	if s != http.StatusOK {
		t.Fatalf("expected 200 got %d", s)
	}
	if strings.TrimSpace(string(b)) != "" {
		t.Fatalf("expected empty body got %q", b)
	}
}
