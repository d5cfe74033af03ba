package usecase

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sourcegraph/conc/iter"

	"github.com/riskibarqy/fixture-feed/internal/domain/kickoff"
	"github.com/riskibarqy/fixture-feed/internal/domain/match"
	"github.com/riskibarqy/fixture-feed/internal/domain/source"
	"github.com/riskibarqy/fixture-feed/internal/platform/logging"
)

// RecordNormalizer turns provider events into fragments. It holds no mutable
// state and is safe for concurrent use.
type RecordNormalizer struct {
	times  *kickoff.Normalizer
	teams  *match.TeamNormalizer
	logger *logging.Logger
}

func NewRecordNormalizer(times *kickoff.Normalizer, teams *match.TeamNormalizer, logger *logging.Logger) *RecordNormalizer {
	if logger == nil {
		logger = logging.Default()
	}
	if times == nil {
		times = kickoff.NewNormalizer(kickoff.Config{})
	}
	if teams == nil {
		teams = match.NewTeamNormalizer(nil)
	}
	return &RecordNormalizer{times: times, teams: teams, logger: logger}
}

func (n *RecordNormalizer) Teams() *match.TeamNormalizer {
	return n.teams
}

// Normalize maps one event. Failures wrap ErrMalformedRecord or ErrTimeParse.
func (n *RecordNormalizer) Normalize(src source.FragmentSource, raw source.RawEvent) (match.Fragment, error) {
	record, err := src.Extract(raw)
	if err != nil {
		return match.Fragment{}, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}

	home := strings.TrimSpace(record.HomeTeam)
	away := strings.TrimSpace(record.AwayTeam)
	if home == "" || away == "" {
		return match.Fragment{}, fmt.Errorf("%w: missing team name", ErrMalformedRecord)
	}
	homeKey := n.teams.Normalize(home)
	awayKey := n.teams.Normalize(away)
	if homeKey == "" || awayKey == "" {
		return match.Fragment{}, fmt.Errorf("%w: team name %q vs %q normalizes to empty", ErrMalformedRecord, home, away)
	}

	when, err := n.times.Normalize(record.Kickoff)
	if err != nil {
		return match.Fragment{}, fmt.Errorf("normalize kickoff: %w", err)
	}

	score := coerceScore(record.HomeScore, record.AwayScore)
	if match.IsLiveStatus(record.Status) {
		score = nil
	}

	sourceID := raw.SourceID
	if sourceID == "" {
		sourceID = src.ID()
	}

	return match.Fragment{
		SourceID:    sourceID,
		Priority:    raw.Priority,
		Kickoff:     when.Instant,
		Precision:   when.Precision,
		Competition: strings.TrimSpace(record.Competition),
		HomeTeam:    home,
		AwayTeam:    away,
		HomeKey:     homeKey,
		AwayKey:     awayKey,
		Score:       score,
		TV:          strings.TrimSpace(record.TV),
		Key:         match.DeriveKey(when.Instant, homeKey, awayKey),
	}, nil
}

// NormalizeAll maps events concurrently and drops the ones that fail,
// keeping input order for the rest.
func (n *RecordNormalizer) NormalizeAll(ctx context.Context, src source.FragmentSource, events []source.RawEvent) []match.Fragment {
	type outcome struct {
		fragment match.Fragment
		err      error
	}

	results := iter.Map(events, func(raw *source.RawEvent) outcome {
		fragment, err := n.Normalize(src, *raw)
		return outcome{fragment: fragment, err: err}
	})

	out := make([]match.Fragment, 0, len(results))
	dropped := 0
	for i, item := range results {
		if item.err != nil {
			dropped++
			n.logger.WarnContext(ctx, "dropping provider record", "source", src.ID(), "index", i, "error", item.err)
			continue
		}
		out = append(out, item.fragment)
	}
	if dropped > 0 {
		n.logger.InfoContext(ctx, "provider records dropped", "source", src.ID(), "dropped", dropped, "kept", len(out))
	}
	return out
}

// coerceScore returns a score only when both halves are present, numeric
// and non-negative.
func coerceScore(home, away any) *match.Score {
	h, ok := coerceGoals(home)
	if !ok {
		return nil
	}
	a, ok := coerceGoals(away)
	if !ok {
		return nil
	}
	return &match.Score{Home: h, Away: a}
}

func coerceGoals(value any) (int, bool) {
	var f float64
	switch typed := value.(type) {
	case nil:
		return 0, false
	case int:
		f = float64(typed)
	case int32:
		f = float64(typed)
	case int64:
		f = float64(typed)
	case float32:
		f = float64(typed)
	case float64:
		f = typed
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt32 || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
