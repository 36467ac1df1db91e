package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestNewSSEHandlers(t *testing.T) {
	env := newTestEnv(t)

	handlers := NewSSEHandlers(env.dashboard, env.demo, env.metrics, env.logger)

	if handlers == nil {
		t.Fatal("NewSSEHandlers() returned nil")
	}
	if handlers.dashboard != env.dashboard {
		t.Error("NewSSEHandlers() should set dashboard field")
	}
	if handlers.logger != env.logger {
		t.Error("NewSSEHandlers() should set logger field")
	}
}

func TestSSEHandlers_HandleDashboard(t *testing.T) {
	env := newTestEnv(t)
	env.load(t)
	handlers := NewSSEHandlers(env.dashboard, env.demo, env.metrics, env.logger)

	target := "/sse/dashboard?datastar=" + url.QueryEscape(`{"region":"West","vendor":"Acme"}`)
	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, env.request(http.MethodGet, target, nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("expected content-type to contain 'text/event-stream', got %q", ct)
	}

	body := w.Body.String()
	for _, want := range []string{
		"datastar-patch-elements",
		"datastar-patch-signals",
		`id="kpi-cards"`,
		`id="vendor-table"`,
		"Initech",
		"incomeSeries",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected stream to contain %q", want)
		}
	}

	view := env.dashboard.View(env.sessionID, nil)
	if view.Region != "West" || view.Vendor != "Acme" {
		t.Errorf("selection not stored: %q/%q", view.Region, view.Vendor)
	}
}

func TestSSEHandlers_HandleDashboard_NoDataset(t *testing.T) {
	env := newTestEnv(t)
	handlers := NewSSEHandlers(env.dashboard, env.demo, env.metrics, env.logger)

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, env.request(http.MethodGet, "/sse/dashboard", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if !strings.Contains(w.Body.String(), "no dataset loaded") {
		t.Error("expected the no dataset notice in the stream")
	}
}

func TestSSEHandlers_HandleDemo(t *testing.T) {
	env := newTestEnv(t)
	handlers := NewSSEHandlers(env.dashboard, env.demo, env.metrics, env.logger)

	w := httptest.NewRecorder()
	handlers.HandleDemo(w, httptest.NewRequest(http.MethodGet, "/sse/demo", nil))

	body := w.Body.String()
	for _, want := range []string{`id="demo-table"`, "Tu postre favorito es", "helado", "tableData", "histogramData", "barsData"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected stream to contain %q", want)
		}
	}
}
