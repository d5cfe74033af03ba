package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/riskibarqy/fixture-feed/internal/domain/kickoff"
	"github.com/riskibarqy/fixture-feed/internal/domain/match"
	"github.com/riskibarqy/fixture-feed/internal/domain/schedule"
	"github.com/riskibarqy/fixture-feed/internal/platform/logging"
)

type ScheduleConfig struct {
	Team             string
	Competition      string
	SubjectKey       string
	SubjectOnly      bool
	RecentResults    int
	UpcomingFixtures int
}

// ScheduleService orders, trims and renders the canonical matches.
type ScheduleService struct {
	cfg    ScheduleConfig
	now    func() time.Time
	logger *logging.Logger
}

func NewScheduleService(cfg ScheduleConfig, now func() time.Time, logger *logging.Logger) *ScheduleService {
	if logger == nil {
		logger = logging.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &ScheduleService{cfg: cfg, now: now, logger: logger}
}

// Arrange sorts by kickoff (ties by merge key), then applies the subject
// filter and retention limits.
func (s *ScheduleService) Arrange(ctx context.Context, matches []match.Match) []match.Match {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.Arrange")
	defer span.End()

	ordered := make([]match.Match, 0, len(matches))
	for _, item := range matches {
		if s.cfg.SubjectOnly && !match.Involves(s.cfg.SubjectKey, item) {
			continue
		}
		ordered = append(ordered, item)
	}
	filtered := len(matches) - len(ordered)

	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].KickoffUTC.Equal(ordered[j].KickoffUTC) {
			return ordered[i].KickoffUTC.Before(ordered[j].KickoffUTC)
		}
		return ordered[i].Key.Less(ordered[j].Key)
	})

	out := applyRetention(ordered, s.now().UTC(), s.cfg.RecentResults, s.cfg.UpcomingFixtures)

	s.logger.DebugContext(ctx, "schedule arranged", "input", len(matches), "filtered", filtered, "retained", len(out))
	return out
}

// Document renders matches that are already arranged.
func (s *ScheduleService) Document(matches []match.Match) schedule.Document {
	now := s.now().UTC()
	entries := make([]schedule.Entry, 0, len(matches))
	for _, item := range matches {
		entries = append(entries, schedule.NewEntry(item))
	}
	return schedule.Document{
		GeneratedAt: schedule.FormatTime(now),
		Team:        s.cfg.Team,
		Competition: s.cfg.Competition,
		Season:      kickoff.Season(now),
		Matches:     entries,
	}
}

// applyRetention keeps the last recent played matches and the first upcoming
// ones. Upcoming means not finished and kicking off at or after now; anything
// else, including a stale unplayed fixture, competes for the recent window.
// Zero means unlimited. Order is preserved.
func applyRetention(ordered []match.Match, now time.Time, recent, upcoming int) []match.Match {
	if recent <= 0 && upcoming <= 0 {
		return ordered
	}

	isUpcoming := func(item match.Match) bool {
		return !item.IsFinished() && !item.KickoffUTC.Before(now)
	}

	played := 0
	for _, item := range ordered {
		if !isUpcoming(item) {
			played++
		}
	}
	skipPlayed := 0
	if recent > 0 && played > recent {
		skipPlayed = played - recent
	}

	out := make([]match.Match, 0, len(ordered))
	seenPlayed, keptUpcoming := 0, 0
	for _, item := range ordered {
		if !isUpcoming(item) {
			seenPlayed++
			if seenPlayed <= skipPlayed {
				continue
			}
			out = append(out, item)
			continue
		}
		if upcoming > 0 && keptUpcoming >= upcoming {
			continue
		}
		keptUpcoming++
		out = append(out, item)
	}
	return out
}
