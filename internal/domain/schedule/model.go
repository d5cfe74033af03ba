package schedule

import (
	"context"
	"time"

	"github.com/riskibarqy/fixture-feed/internal/domain/match"
)

// TimeLayout is the wire form of every instant in the document.
const TimeLayout = "2006-01-02T15:04:05Z"

type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

type Entry struct {
	KickoffUTC  string   `json:"kickoff_utc"`
	Competition string   `json:"competition"`
	HomeTeam    string   `json:"home_team"`
	AwayTeam    string   `json:"away_team"`
	Status      string   `json:"status"`
	Score       *Score   `json:"score,omitempty"`
	Outcome     string   `json:"outcome,omitempty"`
	TV          *string  `json:"tv"`
	Highlights  string   `json:"highlights,omitempty"`
	SourceTrail []string `json:"source_trail"`
}

// Document is the generated schedule artifact.
type Document struct {
	GeneratedAt string  `json:"generated_at"`
	Team        string  `json:"team"`
	Competition string  `json:"competition"`
	Season      string  `json:"season"`
	Matches     []Entry `json:"matches"`
}

func NewEntry(m match.Match) Entry {
	entry := Entry{
		KickoffUTC:  FormatTime(m.KickoffUTC),
		Competition: m.Competition,
		HomeTeam:    m.HomeTeam,
		AwayTeam:    m.AwayTeam,
		Status:      string(m.Status),
		Outcome:     string(m.Outcome),
		Highlights:  m.Highlights,
		SourceTrail: m.SourceTrail,
	}
	if entry.SourceTrail == nil {
		entry.SourceTrail = []string{}
	}
	if m.Score != nil {
		entry.Score = &Score{Home: m.Score.Home, Away: m.Score.Away}
	}
	if m.HasTV() {
		entry.TV = match.StringPtr(*m.TV)
	}
	return entry
}

func FormatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(TimeLayout)
}

// Repository persists the document. Previous reports whether an earlier
// document exists.
type Repository interface {
	Save(ctx context.Context, doc Document) error
	Previous(ctx context.Context) (Document, bool, error)
}

// Mirror receives the published matches after a successful Save.
type Mirror interface {
	Replace(ctx context.Context, generatedAt time.Time, matches []match.Match) error
}
