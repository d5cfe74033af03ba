package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/fixture-feed/internal/domain/match"
	"github.com/riskibarqy/fixture-feed/internal/domain/override"
	"github.com/riskibarqy/fixture-feed/internal/domain/schedule"
	"github.com/riskibarqy/fixture-feed/internal/domain/source"
	"github.com/riskibarqy/fixture-feed/internal/platform/logging"
)

const defaultSourceTimeout = 30 * time.Second

type SyncConfig struct {
	SourceTimeout     time.Duration
	DegradeToPrevious bool
	MaxWorkers        int
}

type SyncDependencies struct {
	Sources    []source.Ranked
	Normalizer *RecordNormalizer
	Reconciler *ReconcileService
	Overrides  *OverrideService
	Scheduler  *ScheduleService
	OverrideDB override.Repository
	Output     schedule.Repository
	Mirror     schedule.Mirror
}

type SourceReport struct {
	SourceID   string `json:"source_id"`
	Priority   int    `json:"priority"`
	Events     int    `json:"events"`
	Fragments  int    `json:"fragments"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

type SyncResult struct {
	Sources     []SourceReport `json:"sources"`
	Fragments   int            `json:"fragments"`
	Matches     int            `json:"matches"`
	GeneratedAt string         `json:"generated_at"`
	Degraded    bool           `json:"degraded"`
}

// SyncService runs the whole pipeline once: fetch every source, reconcile,
// apply overrides, arrange and publish.
type SyncService struct {
	cfg  SyncConfig
	deps SyncDependencies

	logger *logging.Logger
}

func NewSyncService(cfg SyncConfig, deps SyncDependencies, logger *logging.Logger) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = defaultSourceTimeout
	}
	sources := append([]source.Ranked(nil), deps.Sources...)
	sort.SliceStable(sources, func(i, j int) bool {
		if sources[i].Priority != sources[j].Priority {
			return sources[i].Priority < sources[j].Priority
		}
		return sources[i].Source.ID() < sources[j].Source.ID()
	})
	deps.Sources = sources
	return &SyncService{cfg: cfg, deps: deps, logger: logger}
}

type sourceOutcome struct {
	report    SourceReport
	fragments []match.Fragment
}

func (s *SyncService) Run(ctx context.Context) (_ SyncResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.Run")
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	if len(s.deps.Sources) == 0 {
		return SyncResult{}, fmt.Errorf("%w: no sources configured", ErrInvalidInput)
	}
	if s.deps.Normalizer == nil || s.deps.Reconciler == nil || s.deps.Overrides == nil || s.deps.Scheduler == nil || s.deps.Output == nil {
		return SyncResult{}, fmt.Errorf("%w: sync service is not fully configured", ErrInvalidInput)
	}

	outcomes, err := s.fetchAll(ctx)
	if err != nil {
		return SyncResult{}, err
	}

	result := SyncResult{Sources: make([]SourceReport, 0, len(outcomes))}
	fragments := make([]match.Fragment, 0)
	for i, item := range outcomes {
		result.Sources = append(result.Sources, item.report)
		fragments = append(fragments, item.fragments...)
		if len(item.fragments) > 0 {
			continue
		}
		next := "none"
		if i+1 < len(outcomes) {
			next = outcomes[i+1].report.SourceID
		}
		s.logger.WarnContext(ctx, "source yielded no usable fragments, falling back",
			"source", item.report.SourceID,
			"priority", item.report.Priority,
			"next_source", next,
			"error", item.report.Error,
		)
	}
	result.Fragments = len(fragments)

	if len(fragments) == 0 {
		return s.degrade(ctx, result)
	}

	matches := s.deps.Reconciler.Reconcile(ctx, fragments)
	matches = s.deps.Overrides.Apply(ctx, s.loadOverrides(ctx), matches)
	matches = s.deps.Scheduler.Arrange(ctx, matches)
	doc := s.deps.Scheduler.Document(matches)

	if err := ctx.Err(); err != nil {
		return SyncResult{}, fmt.Errorf("run cancelled before write: %w", err)
	}
	if err := s.deps.Output.Save(ctx, doc); err != nil {
		return SyncResult{}, fmt.Errorf("save schedule: %w", err)
	}

	result.Matches = len(matches)
	result.GeneratedAt = doc.GeneratedAt
	s.mirror(ctx, doc.GeneratedAt, matches)

	s.logger.InfoContext(ctx, "schedule published",
		"matches", result.Matches,
		"fragments", result.Fragments,
		"generated_at", result.GeneratedAt,
	)
	return result, nil
}

// fetchAll runs one unit per source on a worker pool. Results come back in
// priority order whatever order the units finish in.
func (s *SyncService) fetchAll(ctx context.Context) ([]sourceOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.fetchAll", attribute.Int("sources", len(s.deps.Sources)))
	defer span.End()

	sources := s.deps.Sources
	workerCount := s.cfg.MaxWorkers
	if workerCount <= 0 || workerCount > len(sources) {
		workerCount = len(sources)
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	outcomes := make([]sourceOutcome, len(sources))
	var workers sync.WaitGroup
	for i, ranked := range sources {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			outcomes[i] = s.runSource(ctx, ranked)
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit source %s to worker pool: %w", ranked.Source.ID(), err)
		}
	}
	workers.Wait()

	return outcomes, nil
}

func (s *SyncService) runSource(ctx context.Context, ranked source.Ranked) sourceOutcome {
	start := time.Now()
	src := ranked.Source
	report := SourceReport{SourceID: src.ID(), Priority: ranked.Priority}

	timeout := ranked.Timeout
	if timeout <= 0 {
		timeout = s.cfg.SourceTimeout
	}
	unitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	events, err := src.Fetch(unitCtx)
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, src.ID(), err)
		report.Error = err.Error()
		report.DurationMs = time.Since(start).Milliseconds()
		s.logger.WarnContext(ctx, "source fetch failed", "source", src.ID(), "duration_ms", report.DurationMs, "error", err)
		return sourceOutcome{report: report}
	}

	for i := range events {
		events[i].Priority = ranked.Priority
		if events[i].SourceID == "" {
			events[i].SourceID = src.ID()
		}
	}
	fragments := s.deps.Normalizer.NormalizeAll(ctx, src, events)

	report.Events = len(events)
	report.Fragments = len(fragments)
	report.DurationMs = time.Since(start).Milliseconds()
	s.logger.InfoContext(ctx, "source fetched",
		"source", src.ID(),
		"priority", ranked.Priority,
		"events", report.Events,
		"fragments", report.Fragments,
		"duration_ms", report.DurationMs,
	)
	return sourceOutcome{report: report, fragments: fragments}
}

// degrade keeps the previous output untouched when allowed; otherwise the
// run fails with ErrNoDataAvailable. The source reports are returned either
// way.
func (s *SyncService) degrade(ctx context.Context, result SyncResult) (SyncResult, error) {
	if !s.cfg.DegradeToPrevious {
		return result, fmt.Errorf("%w: %d sources tried", ErrNoDataAvailable, len(result.Sources))
	}

	previous, ok, err := s.deps.Output.Previous(ctx)
	if err != nil {
		return result, fmt.Errorf("%w: read previous schedule: %w", ErrNoDataAvailable, err)
	}
	if !ok {
		return result, fmt.Errorf("%w: no previous schedule to keep", ErrNoDataAvailable)
	}

	s.logger.WarnContext(ctx, "all sources empty, keeping previous schedule",
		"previous_generated_at", previous.GeneratedAt,
		"previous_matches", len(previous.Matches),
	)
	result.Degraded = true
	result.GeneratedAt = previous.GeneratedAt
	result.Matches = len(previous.Matches)
	return result, nil
}

func (s *SyncService) loadOverrides(ctx context.Context) override.Table {
	if s.deps.OverrideDB == nil {
		return override.Table{}
	}
	table, err := s.deps.OverrideDB.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "override table unreadable, continuing without overrides", "error", err)
		return override.Table{}
	}
	return table
}

func (s *SyncService) mirror(ctx context.Context, generatedAt string, matches []match.Match) {
	if s.deps.Mirror == nil {
		return
	}
	at, err := time.Parse(schedule.TimeLayout, generatedAt)
	if err != nil {
		at = time.Now().UTC()
	}
	if err := s.deps.Mirror.Replace(ctx, at, matches); err != nil {
		s.logger.WarnContext(ctx, "schedule mirror failed", "error", err)
	}
}
