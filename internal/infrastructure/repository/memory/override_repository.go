package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/fixture-feed/internal/domain/override"
)

type OverrideRepository struct {
	mu    sync.RWMutex
	table override.Table
	err   error
}

func NewOverrideRepository(table override.Table) *OverrideRepository {
	return &OverrideRepository{table: table}
}

// FailWith makes every later Load return err.
func (r *OverrideRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.err = err
}

func (r *OverrideRepository) Load(_ context.Context) (override.Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.err != nil {
		return override.Table{}, r.err
	}
	return r.table, nil
}
