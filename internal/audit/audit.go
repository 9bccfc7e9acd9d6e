// Package audit provides AuditSink implementations: a structured-log sink,
// an in-memory ring for operator display and tests, and a fan-out
// combinator. Sinks are fire-and-forget from the caller's point of view;
// the lifecycle manager never fails an operation because a sink did.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"meshguard/internal/domain"
)

// Entry is one recorded control-plane event.
type Entry struct {
	Time    time.Time     `json:"timestamp"`
	MeshID  domain.MeshID `json:"mesh_id"`
	Actor   string        `json:"actor"`
	Event   string        `json:"event"`
	Details string        `json:"details"`
}

// SlogSink writes events through a structured logger.
type SlogSink struct {
	Logger *slog.Logger
}

// Record logs the event. It never fails.
func (s *SlogSink) Record(_ context.Context, meshID domain.MeshID, actor, event, details string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("audit",
		"mesh", meshID.String(),
		"actor", actor,
		"event", event,
		"details", details,
	)
	return nil
}

// Ring keeps the most recent events per mesh, bounded to a fixed size.
type Ring struct {
	mu      sync.Mutex
	max     int
	entries map[domain.MeshID][]Entry
}

// NewRing returns a ring keeping up to max entries per mesh.
func NewRing(max int) *Ring {
	if max <= 0 {
		max = 1000
	}
	return &Ring{max: max, entries: make(map[domain.MeshID][]Entry)}
}

// Record appends an event, evicting the oldest once the ring is full.
func (r *Ring) Record(_ context.Context, meshID domain.MeshID, actor, event, details string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := append(r.entries[meshID], Entry{
		Time:    time.Now().UTC(),
		MeshID:  meshID,
		Actor:   actor,
		Event:   event,
		Details: details,
	})
	if len(list) > r.max {
		list = list[len(list)-r.max:]
	}
	r.entries[meshID] = list
	return nil
}

// Snapshot returns a copy of the recorded events for a mesh, oldest first.
func (r *Ring) Snapshot(meshID domain.MeshID) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries[meshID]...)
}

// Fanout forwards each event to every sink, returning the first error for
// the caller to log.
type Fanout []domain.AuditSink

// Record forwards to all sinks.
func (f Fanout) Record(ctx context.Context, meshID domain.MeshID, actor, event, details string) error {
	var first error
	for _, s := range f {
		if err := s.Record(ctx, meshID, actor, event, details); err != nil && first == nil {
			first = err
		}
	}
	return first
}

var (
	_ domain.AuditSink = (*SlogSink)(nil)
	_ domain.AuditSink = (*Ring)(nil)
	_ domain.AuditSink = (Fanout)(nil)
)
