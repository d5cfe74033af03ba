package match

import (
	"time"

	"github.com/riskibarqy/fixture-feed/internal/domain/kickoff"
)

type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusFinished  Status = "FINISHED"
)

type Outcome string

const (
	OutcomeWin  Outcome = "WIN"
	OutcomeDraw Outcome = "DRAW"
	OutcomeLoss Outcome = "LOSS"
)

// Score is a final result. Both halves are always present.
type Score struct {
	Home int
	Away int
}

// Fragment is one source's normalized view of a match, before reconciliation.
type Fragment struct {
	SourceID    string
	Priority    int
	Kickoff     time.Time
	Precision   kickoff.Precision
	Competition string
	HomeTeam    string
	AwayTeam    string
	HomeKey     string
	AwayKey     string
	Score       *Score
	TV          string
	Key         MergeKey
}

func (f Fragment) Status() Status {
	if f.Score != nil {
		return StatusFinished
	}
	return StatusScheduled
}

// Match is the canonical, reconciled record for one merge key.
type Match struct {
	Key         MergeKey
	KickoffUTC  time.Time
	Precision   kickoff.Precision
	Competition string
	HomeTeam    string
	AwayTeam    string
	HomeKey     string
	AwayKey     string
	Status      Status
	Score       *Score
	Outcome     Outcome
	TV          *string
	Highlights  string
	SourceTrail []string
}

func (m Match) IsFinished() bool {
	return m.Status == StatusFinished && m.Score != nil
}

// HasTV reports whether a non-empty broadcaster label is set.
func (m Match) HasTV() bool {
	return m.TV != nil && *m.TV != ""
}

func StringPtr(value string) *string {
	return &value
}
