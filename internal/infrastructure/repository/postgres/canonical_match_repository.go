package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/riskibarqy/fixture-feed/internal/domain/match"
	qb "github.com/riskibarqy/fixture-feed/internal/platform/querybuilder"
)

// MatchMirrorRepository keeps canonical_matches equal to the last
// published schedule.
type MatchMirrorRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewMatchMirrorRepository(db *sqlx.DB) *MatchMirrorRepository {
	return &MatchMirrorRepository{db: db, now: time.Now}
}

// Replace upserts every match and removes rows whose key was not published.
func (r *MatchMirrorRepository) Replace(ctx context.Context, generatedAt time.Time, matches []match.Match) error {
	upsertQuery, upsertArgs, err := buildUpsertMatchesQuery(generatedAt, r.now().UTC(), matches)
	if err != nil {
		return err
	}
	deleteQuery, deleteArgs, err := buildDeleteStaleMatchesQuery(matches)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace canonical matches tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if upsertQuery != "" {
		if _, err := tx.ExecContext(ctx, upsertQuery, upsertArgs...); err != nil {
			if isResultFormatMismatch(err) {
				return fmt.Errorf("upsert canonical matches (disable prepared binary results on pooled connections): %w", err)
			}
			return fmt.Errorf("upsert canonical matches: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("delete stale canonical matches: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace canonical matches tx: %w", err)
	}
	return nil
}

func buildUpsertMatchesQuery(generatedAt, updatedAt time.Time, matches []match.Match) (string, []any, error) {
	if len(matches) == 0 {
		return "", nil, nil
	}

	rows := make([]canonicalMatchTableModel, 0, len(matches))
	for _, item := range matches {
		rows = append(rows, toCanonicalMatchModel(item, generatedAt, updatedAt))
	}

	cols, err := qb.Columns(rows[0])
	if err != nil {
		return "", nil, fmt.Errorf("resolve canonical match columns: %w", err)
	}
	query, args, err := qb.InsertModels(canonicalMatchesTable, rows, qb.OnConflictUpdate("merge_key", cols))
	if err != nil {
		return "", nil, fmt.Errorf("build upsert canonical matches query: %w", err)
	}
	return query, args, nil
}

func buildDeleteStaleMatchesQuery(matches []match.Match) (string, []any, error) {
	keys := make([]any, 0, len(matches))
	for _, item := range matches {
		keys = append(keys, item.Key.String())
	}

	query, args, err := qb.DeleteFrom(canonicalMatchesTable).
		Where(qb.NotIn("merge_key", keys)).
		ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("build delete stale canonical matches query: %w", err)
	}
	return query, args, nil
}

func toCanonicalMatchModel(item match.Match, generatedAt, updatedAt time.Time) canonicalMatchTableModel {
	row := canonicalMatchTableModel{
		MergeKey:         item.Key.String(),
		MatchDay:         item.Key.Day,
		HomeKey:          item.Key.Home,
		AwayKey:          item.Key.Away,
		KickoffAt:        item.KickoffUTC.UTC(),
		KickoffPrecision: string(item.Precision),
		Competition:      item.Competition,
		HomeTeam:         item.HomeTeam,
		AwayTeam:         item.AwayTeam,
		Status:           string(item.Status),
		Outcome:          nullString(string(item.Outcome)),
		Highlights:       item.Highlights,
		SourceTrail:      pq.StringArray(append([]string{}, item.SourceTrail...)),
		GeneratedAt:      generatedAt.UTC(),
		UpdatedAt:        updatedAt,
	}
	if item.Score != nil {
		row.HomeScore = nullInt64(int64(item.Score.Home))
		row.AwayScore = nullInt64(int64(item.Score.Away))
	}
	if item.HasTV() {
		row.TV = nullString(*item.TV)
	}
	return row
}
