package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/riskibarqy/fixture-feed/internal/domain/match"
	"github.com/riskibarqy/fixture-feed/internal/domain/override"
	"github.com/riskibarqy/fixture-feed/internal/platform/logging"
)

const (
	overrideDateLayout = "2006-01-02"

	estimatedTNT = "TNT Sports (est.)"
	estimatedSky = "Sky Sports (est.)"
)

type OverrideConfig struct {
	SubjectKey string
	Location   *time.Location
	TVEstimate bool
}

// OverrideService applies the curated broadcaster table to reconciled
// matches. Keys are matched on the local date in the reference zone.
type OverrideService struct {
	teams      *match.TeamNormalizer
	subjectKey string
	location   *time.Location
	tvEstimate bool
	logger     *logging.Logger
}

func NewOverrideService(teams *match.TeamNormalizer, cfg OverrideConfig, logger *logging.Logger) *OverrideService {
	if logger == nil {
		logger = logging.Default()
	}
	if teams == nil {
		teams = match.NewTeamNormalizer(nil)
	}
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}
	return &OverrideService{
		teams:      teams,
		subjectKey: cfg.SubjectKey,
		location:   location,
		tvEstimate: cfg.TVEstimate,
		logger:     logger,
	}
}

// Apply returns a copy of matches with overrides applied. Exact
// (date + opponent) entries beat date-only entries.
func (s *OverrideService) Apply(ctx context.Context, table override.Table, matches []match.Match) []match.Match {
	ctx, span := startUsecaseSpan(ctx, "usecase.OverrideService.Apply")
	defer span.End()

	exact := s.indexExact(ctx, table)

	out := make([]match.Match, len(matches))
	applied, estimated := 0, 0
	for i, item := range matches {
		localDate := item.KickoffUTC.In(s.location).Format(overrideDateLayout)

		entry, ok := s.lookupExact(exact, localDate, item)
		if !ok {
			entry, ok = table.ByDate[localDate]
		}
		if ok && !entry.IsEmpty() {
			if entry.TV != "" {
				item.TV = match.StringPtr(entry.TV)
			}
			if entry.Highlights != "" {
				item.Highlights = entry.Highlights
			}
			applied++
		}

		if s.tvEstimate && !item.HasTV() {
			if label := s.estimateTV(item); label != "" {
				item.TV = match.StringPtr(label)
				estimated++
			}
		}
		out[i] = item
	}

	s.logger.DebugContext(ctx, "overrides applied", "entries", table.Len(), "applied", applied, "estimated", estimated)
	return out
}

func (s *OverrideService) indexExact(ctx context.Context, table override.Table) map[string]override.Entry {
	index := make(map[string]override.Entry, len(table.ByExact))
	for raw, entry := range table.ByExact {
		key, ok := override.ParseExactKey(raw)
		if !ok {
			s.logger.WarnContext(ctx, "ignoring malformed override key", "key", raw)
			continue
		}
		index[key.Date+"|"+s.teams.Normalize(key.Opponent)] = entry
	}
	return index
}

func (s *OverrideService) lookupExact(index map[string]override.Entry, localDate string, item match.Match) (override.Entry, bool) {
	if len(index) == 0 {
		return override.Entry{}, false
	}
	for _, opponent := range match.Opponent(s.subjectKey, item) {
		if entry, ok := index[localDate+"|"+s.teams.Normalize(opponent)]; ok {
			return entry, true
		}
	}
	return override.Entry{}, false
}

// estimateTV guesses the UK broadcaster from the Premier League slot.
func (s *OverrideService) estimateTV(item match.Match) string {
	if !strings.Contains(strings.ToLower(item.Competition), "premier") {
		return ""
	}
	local := item.KickoffUTC.In(s.location)
	slot := local.Format("15:04")
	switch local.Weekday() {
	case time.Saturday:
		switch slot {
		case "12:30":
			return estimatedTNT
		case "17:30", "20:00":
			return estimatedSky
		}
	case time.Sunday:
		switch slot {
		case "14:00", "16:30", "19:00":
			return estimatedSky
		}
	case time.Monday, time.Friday:
		switch slot {
		case "19:45", "20:00":
			return estimatedSky
		}
	}
	return ""
}
