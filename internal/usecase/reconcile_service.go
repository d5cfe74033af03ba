package usecase

import (
	"context"
	"slices"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/fixture-feed/internal/domain/kickoff"
	"github.com/riskibarqy/fixture-feed/internal/domain/match"
	"github.com/riskibarqy/fixture-feed/internal/platform/logging"
)

// ReconcileService merges fragments sharing a merge key into one canonical
// match. The result does not depend on the order fragments arrive in.
type ReconcileService struct {
	subjectKey string
	logger     *logging.Logger
}

func NewReconcileService(subjectKey string, logger *logging.Logger) *ReconcileService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReconcileService{subjectKey: subjectKey, logger: logger}
}

// Reconcile returns one match per merge key, ordered by key.
func (s *ReconcileService) Reconcile(ctx context.Context, fragments []match.Fragment) []match.Match {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcileService.Reconcile", attribute.Int("fragments", len(fragments)))
	defer span.End()

	groups := make(map[match.MergeKey][]match.Fragment)
	for _, fragment := range fragments {
		groups[fragment.Key] = append(groups[fragment.Key], fragment)
	}

	keys := make([]match.MergeKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	out := make([]match.Match, 0, len(keys))
	merged := 0
	for _, key := range keys {
		group := groups[key]
		if len(group) > 1 {
			merged++
		}
		out = append(out, s.merge(key, group))
	}

	s.logger.DebugContext(ctx, "fragments reconciled", "fragments", len(fragments), "matches", len(out), "multi_source", merged)
	return out
}

func (s *ReconcileService) merge(key match.MergeKey, group []match.Fragment) match.Match {
	ordered := slices.Clone(group)
	sort.SliceStable(ordered, func(i, j int) bool { return fragmentLess(ordered[i], ordered[j]) })

	lead := ordered[0]
	out := match.Match{
		Key:         key,
		KickoffUTC:  lead.Kickoff,
		Precision:   lead.Precision,
		HomeTeam:    lead.HomeTeam,
		AwayTeam:    lead.AwayTeam,
		HomeKey:     lead.HomeKey,
		AwayKey:     lead.AwayKey,
		Status:      match.StatusScheduled,
		SourceTrail: make([]string, 0, len(ordered)),
	}

	// The lead always contributes the display names; later fragments join
	// the trail only when they fill a field.
	kickoffSet := false
	for i, fragment := range ordered {
		contributed := i == 0
		if !kickoffSet && fragment.Precision == kickoff.PrecisionExact {
			out.KickoffUTC = fragment.Kickoff
			out.Precision = fragment.Precision
			kickoffSet = true
			contributed = true
		}
		if out.Score == nil && fragment.Score != nil {
			score := *fragment.Score
			out.Score = &score
			out.Status = match.StatusFinished
			contributed = true
		}
		if out.Competition == "" && fragment.Competition != "" {
			out.Competition = fragment.Competition
			contributed = true
		}
		if out.TV == nil && fragment.TV != "" {
			out.TV = match.StringPtr(fragment.TV)
			contributed = true
		}
		if contributed && !slices.Contains(out.SourceTrail, fragment.SourceID) {
			out.SourceTrail = append(out.SourceTrail, fragment.SourceID)
		}
	}

	out.Outcome = match.DeriveOutcome(s.subjectKey, out.HomeKey, out.AwayKey, out.Score)
	return out
}

// fragmentLess is a total order over fragments: authority first, then every
// remaining field so that equal-priority duplicates sort the same way on
// every run.
func fragmentLess(a, b match.Fragment) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	if a.SourceID != b.SourceID {
		return a.SourceID < b.SourceID
	}
	if a.Precision != b.Precision {
		return a.Precision == kickoff.PrecisionExact
	}
	if !a.Kickoff.Equal(b.Kickoff) {
		return a.Kickoff.Before(b.Kickoff)
	}
	if (a.Score != nil) != (b.Score != nil) {
		return a.Score != nil
	}
	if a.Score != nil && *a.Score != *b.Score {
		if a.Score.Home != b.Score.Home {
			return a.Score.Home < b.Score.Home
		}
		return a.Score.Away < b.Score.Away
	}
	if c := strings.Compare(a.Competition, b.Competition); c != 0 {
		return c < 0
	}
	if c := strings.Compare(a.TV, b.TV); c != 0 {
		return c < 0
	}
	if c := strings.Compare(a.HomeTeam, b.HomeTeam); c != 0 {
		return c < 0
	}
	return a.AwayTeam < b.AwayTeam
}
