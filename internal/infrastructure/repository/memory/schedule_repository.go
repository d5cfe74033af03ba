package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/fixture-feed/internal/domain/match"
	"github.com/riskibarqy/fixture-feed/internal/domain/schedule"
)

type ScheduleRepository struct {
	mu    sync.RWMutex
	doc   schedule.Document
	saved bool
	saves int
}

func NewScheduleRepository(previous *schedule.Document) *ScheduleRepository {
	repo := &ScheduleRepository{}
	if previous != nil {
		repo.doc = *previous
		repo.saved = true
	}
	return repo
}

func (r *ScheduleRepository) Save(_ context.Context, doc schedule.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.doc = doc
	r.saved = true
	r.saves++
	return nil
}

func (r *ScheduleRepository) Previous(_ context.Context) (schedule.Document, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.doc, r.saved, nil
}

// Saves counts Save calls since construction.
func (r *ScheduleRepository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.saves
}

// MirrorRepository keeps the last replaced match set keyed by merge key.
type MirrorRepository struct {
	mu          sync.RWMutex
	generatedAt time.Time
	byKey       map[string]match.Match
	err         error
}

func NewMirrorRepository() *MirrorRepository {
	return &MirrorRepository{byKey: make(map[string]match.Match)}
}

// FailWith makes every later Replace return err.
func (r *MirrorRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.err = err
}

func (r *MirrorRepository) Replace(_ context.Context, generatedAt time.Time, matches []match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}
	r.generatedAt = generatedAt
	r.byKey = make(map[string]match.Match, len(matches))
	for _, item := range matches {
		r.byKey[item.Key.String()] = item
	}
	return nil
}

func (r *MirrorRepository) Get(key string) (match.Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byKey[key]
	return item, ok
}

func (r *MirrorRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byKey)
}
