package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

type Selection struct {
	Region string `json:"region"`
	Vendor string `json:"vendor"`
}

// Dashboard ties the session store to the loader and the render pipeline.
// Each call reads a session's state, derives a view and stores the
// resulting state back.
type Dashboard struct {
	sessions *SessionStore
	loader   *Loader
	logger   *slog.Logger
	now      func() time.Time
}

func NewDashboard(sessions *SessionStore, loader *Loader, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{
		sessions: sessions,
		loader:   loader,
		logger:   logger,
		now:      time.Now,
	}
}

func (d *Dashboard) Sessions() *SessionStore {
	return d.sessions
}

// LoadSeed loads a dataset that every new session starts with.
func (d *Dashboard) LoadSeed(ctx context.Context, path string) error {
	ds, err := d.loader.LoadFile(ctx, path)
	if err != nil {
		return fmt.Errorf("load seed dataset: %w", err)
	}
	d.sessions.SetSeed(State{}.WithDataset(ds, path, d.now()))
	return nil
}

// View renders the session. A nil selection keeps the current one. The
// render and the write back happen under the session's lock.
func (d *Dashboard) View(sessionID string, sel *Selection) View {
	var view View
	_, known := d.sessions.Update(sessionID, func(st State) State {
		if sel != nil {
			st = st.WithSelection(sel.Region, sel.Vendor)
		}
		var next State
		view, next = Render(st)
		return next
	})
	if !known {
		// Requests without a live session see the seed and change nothing.
		st := d.sessions.Seed()
		if sel != nil {
			st = st.WithSelection(sel.Region, sel.Vendor)
		}
		view, _ = Render(st)
	}
	return view
}

// Preview renders the session with sel applied but leaves the stored
// state alone.
func (d *Dashboard) Preview(sessionID string, sel Selection) View {
	st, ok := d.sessions.Get(sessionID)
	if !ok {
		st = d.sessions.Seed()
	}
	view, _ := Render(st.WithSelection(sel.Region, sel.Vendor))
	return view
}

// Upload replaces the session's dataset. A file that fails to load leaves
// the session with no dataset; the reason is reported on the next view.
// Parsing happens outside the session lock; only the swap is serialized.
func (d *Dashboard) Upload(ctx context.Context, sessionID string, r io.Reader, filename string) (View, error) {
	ds, err := d.loader.Load(ctx, r, filename)
	if err != nil {
		d.logger.Warn("upload rejected",
			"session_id", sessionID,
			"filename", filename,
			"error", err,
		)
		d.sessions.Update(sessionID, func(State) State {
			return State{}.WithLoadError(err.Error())
		})
		return View{}, err
	}

	loaded := State{}.WithDataset(ds, filename, d.now())
	var view View
	if _, known := d.sessions.Update(sessionID, func(State) State {
		var next State
		view, next = Render(loaded)
		return next
	}); !known {
		view, _ = Render(loaded)
	}
	return view, nil
}

// Export writes the session's dataset with its marginal revenue column.
func (d *Dashboard) Export(w io.Writer, sessionID string) error {
	st := d.state(sessionID)
	if st.Dataset == nil {
		return ErrEmptyDataset
	}
	return WriteCSV(w, st.Dataset, MarginalRevenue(st.Dataset))
}

func (d *Dashboard) HasDataset(sessionID string) bool {
	st := d.state(sessionID)
	return st.Dataset != nil
}

// state falls back to the seed for requests without a live session.
func (d *Dashboard) state(sessionID string) State {
	if st, ok := d.sessions.Get(sessionID); ok {
		return st
	}
	return d.sessions.Seed()
}
