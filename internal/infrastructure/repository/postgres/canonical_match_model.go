package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

const canonicalMatchesTable = "canonical_matches"

type canonicalMatchTableModel struct {
	MergeKey         string         `db:"merge_key"`
	MatchDay         string         `db:"match_day"`
	HomeKey          string         `db:"home_key"`
	AwayKey          string         `db:"away_key"`
	KickoffAt        time.Time      `db:"kickoff_at"`
	KickoffPrecision string         `db:"kickoff_precision"`
	Competition      string         `db:"competition"`
	HomeTeam         string         `db:"home_team"`
	AwayTeam         string         `db:"away_team"`
	Status           string         `db:"status"`
	HomeScore        sql.NullInt64  `db:"home_score"`
	AwayScore        sql.NullInt64  `db:"away_score"`
	Outcome          sql.NullString `db:"outcome"`
	TV               sql.NullString `db:"tv"`
	Highlights       string         `db:"highlights"`
	SourceTrail      pq.StringArray `db:"source_trail"`
	GeneratedAt      time.Time      `db:"generated_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}
