package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
)

const seedCSV = "Date,REGION,NAME,INCOME,SOLD UNITS\n" +
	"2024-01-01,West,Acme,100,10\n" +
	"2024-01-02,East,Globex,150,12\n" +
	"2024-01-03,West,Initech,210,15\n"

func testConfig() *config.Config {
	return &config.Config{
		Dataset: config.DatasetConfig{UploadMaxBytes: 1 << 20},
		Session: config.SessionConfig{CookieName: "dashboard_session", TTL: time.Hour},
	}
}

// newTestServer builds the full server with a seed dataset every new
// session starts from.
func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	seed := filepath.Join(t.TempDir(), "seed.csv")
	if err := os.WriteFile(seed, []byte(seedCSV), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	sessions := services.NewSessionStore(time.Hour, logger)
	dashboard := services.NewDashboard(sessions, services.NewLoader(logger), logger)
	if err := dashboard.LoadSeed(context.Background(), seed); err != nil {
		t.Fatalf("LoadSeed() failed: %v", err)
	}
	demo := services.NewDemo(1)
	metrics := observability.NewMetrics(func() float64 { return float64(sessions.Len()) })

	templateHandlers := &server.TemplateHandlers{Dashboard: newDashboardHandler(dashboard, demo)}
	return server.NewServer(testConfig(), dashboard, demo, metrics, logger, templateHandlers)
}

// Integration tests for HTTP routes
func TestServer_Routes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/api/view", http.StatusOK, "application/json"},
		{"/api/kpis", http.StatusOK, "application/json"},
		{"/api/regions", http.StatusOK, "application/json"},
		{"/api/vendors?region=West", http.StatusOK, "application/json"},
		{"/api/demo", http.StatusOK, "application/json"},
		{"/api/export.csv", http.StatusOK, "text/csv"},
		{"/health", http.StatusOK, "application/json"},
		{"/admin/stats", http.StatusOK, "application/json"},
		{"/metrics", http.StatusOK, "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}

			ct := w.Header().Get("Content-Type")
			if !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}

			if tt.contentType == "application/json" {
				var result any
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Errorf("invalid json: %v", err)
				}
			}
		})
	}
}

func TestServer_KPIResponse(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/api/kpis", nil))

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			KPIs struct {
				TotalIncome float64 `json:"total_income"`
				TotalUnits  float64 `json:"total_units"`
				DeltaIncome float64 `json:"delta_income"`
			} `json:"kpis"`
			Cards []map[string]any `json:"cards"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}

	if !response.Success {
		t.Error("expected success=true in response")
	}
	if response.Data.KPIs.TotalIncome != 460 {
		t.Errorf("total income = %v, want 460", response.Data.KPIs.TotalIncome)
	}
	if response.Data.KPIs.TotalUnits != 37 {
		t.Errorf("total units = %v, want 37", response.Data.KPIs.TotalUnits)
	}
	if response.Data.KPIs.DeltaIncome != 60 {
		t.Errorf("delta income = %v, want 60", response.Data.KPIs.DeltaIncome)
	}
	if len(response.Data.Cards) != 3 {
		t.Errorf("expected 3 cards, got %d", len(response.Data.Cards))
	}
}

// A session cookie issued on upload carries the new dataset to later requests.
func TestServer_UploadIsSessionScoped(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "mine.csv")
	if err != nil {
		t.Fatalf("CreateFormFile() failed: %v", err)
	}
	io.WriteString(part, "INCOME,SOLD UNITS\n10,1\n30,3\n")
	mw.Close()

	r := httptest.NewRequest("POST", "/api/upload", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	r = httptest.NewRequest("GET", "/api/view", nil)
	r.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, r)

	var own struct {
		Data struct {
			Source  string   `json:"source"`
			Notices []string `json:"notices"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&own); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if own.Data.Source != "mine.csv" {
		t.Errorf("source = %q, want mine.csv", own.Data.Source)
	}
	if len(own.Data.Notices) != 2 {
		t.Errorf("expected region and name notices, got %v", own.Data.Notices)
	}

	// A browser without the cookie still sees the seed.
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/api/view", nil))
	if strings.Contains(w.Body.String(), "mine.csv") {
		t.Error("upload leaked into another session")
	}
}

// Health checks and scrapes arrive without cookies; they must not mint sessions.
func TestServer_OperationalRoutesSkipSessions(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/health", "/metrics", "/health", "/metrics"} {
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, httptest.NewRequest("GET", path, nil))

		if w.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want %d", path, w.Code, http.StatusOK)
		}
		if got := w.Header().Get("Set-Cookie"); got != "" {
			t.Errorf("%s set a cookie: %q", path, got)
		}
	}

	sessionCount := func() float64 {
		t.Helper()
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, httptest.NewRequest("GET", "/admin/stats", nil))
		var stats struct {
			Data struct {
				Sessions float64 `json:"sessions"`
			} `json:"data"`
		}
		if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
			t.Fatalf("failed to decode JSON: %v", err)
		}
		return stats.Data.Sessions
	}

	if n := sessionCount(); n != 0 {
		t.Errorf("sessions = %v after health and metrics, want 0", n)
	}

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/api/view", nil))
	if w.Header().Get("Set-Cookie") == "" {
		t.Error("expected /api/view to issue a session cookie")
	}
	if n := sessionCount(); n != 1 {
		t.Errorf("sessions = %v after a dashboard request, want 1", n)
	}
}

// Test Server-Sent Events routes
func TestServer_SSERoutes(t *testing.T) {
	srv := newTestServer(t)

	for _, route := range []string{"/sse/dashboard", "/sse/demo"} {
		t.Run(route, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", route, nil)

			srv.ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
			}

			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("content-type = %q, should contain 'text/event-stream'", ct)
			}

			if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
				t.Errorf("cache-control = %q, want 'no-cache'", cc)
			}
		})
	}
}

// Test error handling for invalid methods
func TestServer_ErrorHandling(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"POST", "/api/kpis", http.StatusMethodNotAllowed},
		{"PUT", "/", http.StatusMethodNotAllowed},
		{"DELETE", "/health", http.StatusMethodNotAllowed},
		{"GET", "/api/upload", http.StatusMethodNotAllowed},
		{"GET", "/missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.method, tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

// Test dashboard template rendering
func TestDashboardTemplate(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := w.Body.String()
	expected := []string{
		"Sales Dashboard",
		"Upload a spreadsheet",
		"Key indicators",
		"Data with marginal revenue",
		"Region and vendor",
		"Simple Data Dashboard",
		"/api/export.csv",
		"Total Income",
	}
	for _, s := range expected {
		if !strings.Contains(body, s) {
			t.Errorf("dashboard should contain '%s'", s)
		}
	}
}
