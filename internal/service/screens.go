package service

import (
	"sync"
	"time"

	apperrors "kinobilet/internal/errors"
	"kinobilet/internal/metrics"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// screen is one mounted view that the BFF keeps alive between requests.
type screen interface {
	touchedAt() time.Time
	touch(now time.Time)
	teardown()
}

// registry owns the open screens of one kind.
type registry[S screen] struct {
	kind  string
	clock clockwork.Clock

	mu      sync.Mutex
	screens map[string]S
}

func newRegistry[S screen](kind string, clock clockwork.Clock) *registry[S] {
	return &registry[S]{
		kind:    kind,
		clock:   clock,
		screens: make(map[string]S),
	}
}

func newScreenID() string {
	return uuid.New().String()
}

func (r *registry[S]) add(id string, s S) {
	r.mu.Lock()
	r.screens[id] = s
	r.mu.Unlock()

	metrics.OpenScreens.WithLabelValues(r.kind).Inc()
}

// get returns an open screen and marks it as used.
func (r *registry[S]) get(id string) (S, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.screens[id]
	if !ok {
		var zero S
		return zero, apperrors.ErrScreenNotFound
	}
	s.touch(r.clock.Now())
	return s, nil
}

// remove unregisters and tears down a screen. It reports false for unknown ids.
func (r *registry[S]) remove(id string) bool {
	r.mu.Lock()
	s, ok := r.screens[id]
	delete(r.screens, id)
	r.mu.Unlock()

	if !ok {
		return false
	}

	metrics.OpenScreens.WithLabelValues(r.kind).Dec()
	s.teardown()
	return true
}

// removeIdle tears down the screens untouched since before.
func (r *registry[S]) removeIdle(before time.Time) int {
	r.mu.Lock()
	var idle []string
	for id, s := range r.screens {
		if s.touchedAt().Before(before) {
			idle = append(idle, id)
		}
	}
	r.mu.Unlock()

	closed := 0
	for _, id := range idle {
		if r.remove(id) {
			closed++
		}
	}
	return closed
}

// lastUse is embedded by screens to track activity for the reaper.
type lastUse struct {
	mu sync.Mutex
	at time.Time
}

func (l *lastUse) touchedAt() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.at
}

func (l *lastUse) touch(now time.Time) {
	l.mu.Lock()
	l.at = now
	l.mu.Unlock()
}
