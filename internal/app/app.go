package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/riskibarqy/fixture-feed/external/footballdata"
	"github.com/riskibarqy/fixture-feed/external/sportmonks"
	"github.com/riskibarqy/fixture-feed/external/thesportsdb"
	"github.com/riskibarqy/fixture-feed/internal/config"
	"github.com/riskibarqy/fixture-feed/internal/domain/kickoff"
	"github.com/riskibarqy/fixture-feed/internal/domain/match"
	"github.com/riskibarqy/fixture-feed/internal/domain/source"
	"github.com/riskibarqy/fixture-feed/internal/infrastructure/repository/file"
	"github.com/riskibarqy/fixture-feed/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fixture-feed/internal/platform/dburl"
	"github.com/riskibarqy/fixture-feed/internal/platform/logging"
	"github.com/riskibarqy/fixture-feed/internal/platform/resilience"
	"github.com/riskibarqy/fixture-feed/internal/usecase"
)

var appTracer = otel.Tracer("fixture-feed/internal/app")

// Runner owns one configured sync pipeline and the resources it opened.
type Runner struct {
	sync   *usecase.SyncService
	db     *sqlx.DB
	logger *logging.Logger
}

func NewRunner(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Runner, error) {
	if logger == nil {
		logger = logging.Default()
	}

	sources, err := buildSources(cfg, logger)
	if err != nil {
		return nil, err
	}

	teams := match.NewTeamNormalizer(cfg.TeamAliases)
	subjectKey := teams.Normalize(cfg.SubjectTeam)
	times := kickoff.NewNormalizer(kickoff.Config{
		Location:       cfg.Location,
		DefaultKickoff: cfg.DefaultKickoff,
	})

	deps := usecase.SyncDependencies{
		Sources:    sources,
		Normalizer: usecase.NewRecordNormalizer(times, teams, logger),
		Reconciler: usecase.NewReconcileService(subjectKey, logger),
		Overrides: usecase.NewOverrideService(teams, usecase.OverrideConfig{
			SubjectKey: subjectKey,
			Location:   cfg.Location,
			TVEstimate: cfg.TVEstimateEnabled,
		}, logger),
		Scheduler: usecase.NewScheduleService(usecase.ScheduleConfig{
			Team:             cfg.SubjectTeam,
			Competition:      cfg.SubjectCompetition,
			SubjectKey:       subjectKey,
			SubjectOnly:      cfg.SubjectOnly,
			RecentResults:    cfg.RetentionRecentResults,
			UpcomingFixtures: cfg.RetentionUpcomingFixtures,
		}, time.Now, logger),
		OverrideDB: file.NewOverrideRepository(cfg.OverrideFile),
		Output:     file.NewScheduleRepository(cfg.OutputFile, logger),
	}

	runner := &Runner{logger: logger}
	if cfg.DBEnabled {
		db, err := openDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		runner.db = db
		deps.Mirror = postgres.NewMatchMirrorRepository(db)
		logger.Info("schedule mirror enabled", "database", dburl.Name(cfg.DBURL))
	}

	runner.sync = usecase.NewSyncService(usecase.SyncConfig{
		DegradeToPrevious: cfg.DegradeToPrevious,
	}, deps, logger)
	return runner, nil
}

// Run executes one sync under a root span so usecase spans attach to it.
func (r *Runner) Run(ctx context.Context) (usecase.SyncResult, error) {
	ctx, span := appTracer.Start(ctx, "app.Runner.Run")
	defer span.End()

	result, err := r.sync.Run(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}
	span.SetAttributes(
		attribute.Int("sync.matches", result.Matches),
		attribute.Int("sync.fragments", result.Fragments),
		attribute.Bool("sync.degraded", result.Degraded),
	)
	return result, nil
}

func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// buildSources instantiates one client per configured SOURCES entry, in
// priority order.
func buildSources(cfg config.Config, logger *logging.Logger) ([]source.Ranked, error) {
	breaker := resilience.CircuitBreakerConfig{
		Enabled:          cfg.SourceCircuitEnabled,
		FailureThreshold: cfg.SourceCircuitFailureCount,
		OpenTimeout:      cfg.SourceCircuitOpenTimeout,
		HalfOpenMaxReq:   cfg.SourceCircuitHalfOpenMaxReq,
	}

	out := make([]source.Ranked, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		retry := resilience.RetryConfig{
			MaxRetries: sc.MaxRetries,
			BaseDelay:  cfg.SourceRetryBaseDelay,
		}
		sourceLogger := logger.With("source", sc.ID)

		var src source.FragmentSource
		switch sc.ID {
		case config.SourceTheSportsDB:
			src = thesportsdb.NewClient(thesportsdb.ClientConfig{
				BaseURL:        cfg.TheSportsDBBaseURL,
				APIKey:         cfg.TheSportsDBKey,
				TeamID:         cfg.TheSportsDBTeamID,
				SeasonEvents:   cfg.TheSportsDBSeason,
				Timeout:        sc.Timeout,
				Retry:          retry,
				CircuitBreaker: breaker,
				Logger:         sourceLogger,
			})
		case config.SourceFootballData:
			src = footballdata.NewClient(footballdata.ClientConfig{
				BaseURL:        cfg.FootballDataBaseURL,
				Token:          cfg.FootballDataToken,
				TeamID:         cfg.FootballDataTeamID,
				DaysBack:       cfg.FetchDaysBack,
				DaysAhead:      cfg.FetchDaysAhead,
				Timeout:        sc.Timeout,
				Retry:          retry,
				CircuitBreaker: breaker,
				Logger:         sourceLogger,
			})
		case config.SourceSportMonks:
			src = sportmonks.NewClient(sportmonks.ClientConfig{
				BaseURL:        cfg.SportMonksBaseURL,
				Token:          cfg.SportMonksToken,
				TeamID:         cfg.SportMonksTeamID,
				DaysBack:       cfg.FetchDaysBack,
				DaysAhead:      cfg.FetchDaysAhead,
				Timeout:        sc.Timeout,
				Retry:          retry,
				CircuitBreaker: breaker,
				Logger:         sourceLogger,
			})
		default:
			return nil, fmt.Errorf("unknown source %q", sc.ID)
		}

		out = append(out, source.Ranked{Source: src, Priority: sc.Priority, Timeout: sc.Timeout})
	}
	return out, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := dburl.Normalize(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dburl.Name(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxOpenConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
