package source

import (
	"context"
	"time"

	"github.com/riskibarqy/fixture-feed/internal/domain/kickoff"
)

// RawEvent is one provider event exactly as decoded from the payload.
type RawEvent struct {
	SourceID string
	Priority int
	Fields   map[string]any
}

// Record is the provider-neutral view an adapter extracts from a RawEvent.
// Score values stay raw; coercion happens in the record normalizer.
type Record struct {
	HomeTeam    string
	AwayTeam    string
	Competition string
	HomeScore   any
	AwayScore   any
	Status      string
	TV          string
	Kickoff     kickoff.Input
}

// FragmentSource is implemented once per provider.
type FragmentSource interface {
	ID() string
	Fetch(ctx context.Context) ([]RawEvent, error)
	Extract(raw RawEvent) (Record, error)
}

// Ranked pairs a source with its position in the fallback chain. A zero
// Timeout means the caller's default.
type Ranked struct {
	Source   FragmentSource
	Priority int
	Timeout  time.Duration
}
