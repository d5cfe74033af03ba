package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/fixture-feed/internal/domain/kickoff"
	"github.com/riskibarqy/fixture-feed/internal/platform/logging"
)

const (
	SourceTheSportsDB  = "thesportsdb"
	SourceFootballData = "footballdata"
	SourceSportMonks   = "sportmonks"
)

// SourceConfig is one entry of the provider fallback chain.
type SourceConfig struct {
	ID         string        `validate:"required,oneof=thesportsdb footballdata sportmonks"`
	Priority   int           `validate:"gte=0"`
	Timeout    time.Duration `validate:"gt=0"`
	MaxRetries int           `validate:"gte=0,lte=10"`
}

// Config stores runtime configuration for the sync run.
type Config struct {
	AppEnv         string `validate:"required,oneof=dev stage prod"`
	ServiceName    string `validate:"required"`
	ServiceVersion string `validate:"required"`
	LogLevel       logging.Level

	SubjectTeam        string `validate:"required"`
	SubjectCompetition string
	ReferenceTimezone  string         `validate:"required"`
	Location           *time.Location `validate:"required"`
	DefaultKickoff     kickoff.TimeOfDay

	Sources                     []SourceConfig `validate:"required,min=1,dive"`
	SourceRetryBaseDelay        time.Duration  `validate:"gt=0"`
	SourceCircuitEnabled        bool
	SourceCircuitFailureCount   int           `validate:"gte=1"`
	SourceCircuitOpenTimeout    time.Duration `validate:"gt=0"`
	SourceCircuitHalfOpenMaxReq int           `validate:"gte=1"`
	FetchDaysBack               int           `validate:"gte=0"`
	FetchDaysAhead              int           `validate:"gte=0"`

	RetentionRecentResults    int `validate:"gte=0"`
	RetentionUpcomingFixtures int `validate:"gte=0"`
	SubjectOnly               bool
	OverrideFile              string
	OutputFile                string `validate:"required"`
	DegradeToPrevious         bool
	TVEstimateEnabled         bool
	TeamAliases               map[string]string
	RunTimeout                time.Duration `validate:"gt=0"`

	TheSportsDBBaseURL  string `validate:"required,url"`
	TheSportsDBKey      string `validate:"required"`
	TheSportsDBTeamID   string `validate:"required"`
	TheSportsDBSeason   bool
	FootballDataBaseURL string `validate:"required,url"`
	FootballDataToken   string
	FootballDataTeamID  int64 `validate:"gt=0"`
	SportMonksBaseURL   string `validate:"required,url"`
	SportMonksToken     string
	SportMonksTeamID    int64 `validate:"gte=0"`

	DBEnabled               bool
	DBURL                   string `validate:"required_if=DBEnabled true"`
	DBDisablePreparedBinary bool
	DBMaxOpenConns          int           `validate:"gte=1"`
	DBConnMaxLifetime       time.Duration `validate:"gte=0"`
	UptraceEnabled          bool
	UptraceDSN              string `validate:"required_if=UptraceEnabled true"`

	BetterStackEnabled  bool
	BetterStackEndpoint string `validate:"required_if=BetterStackEnabled true"`
	BetterStackToken    string
	BetterStackTimeout  time.Duration `validate:"gt=0"`
	BetterStackMinLevel logging.Level
}

// Source returns the configured entry for a provider id.
func (c Config) Source(id string) (SourceConfig, bool) {
	for _, item := range c.Sources {
		if item.ID == id {
			return item, true
		}
	}
	return SourceConfig{}, false
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	referenceTimezone := strings.TrimSpace(getEnv("REFERENCE_TIMEZONE", "Europe/London"))
	location, err := time.LoadLocation(referenceTimezone)
	if err != nil {
		return Config{}, fmt.Errorf("parse REFERENCE_TIMEZONE: %w", err)
	}

	defaultKickoff, err := kickoff.ParseTimeOfDay(getEnv("DEFAULT_KICKOFF_TIME", "15:00"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DEFAULT_KICKOFF_TIME: %w", err)
	}

	sourceTimeout, err := time.ParseDuration(getEnv("SOURCE_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SOURCE_TIMEOUT: %w", err)
	}
	sourceMaxRetries, err := getEnvAsInt("SOURCE_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse SOURCE_MAX_RETRIES: %w", err)
	}
	sourceRetryBaseDelay, err := time.ParseDuration(getEnv("SOURCE_RETRY_BASE_DELAY", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SOURCE_RETRY_BASE_DELAY: %w", err)
	}

	sources, err := parseSources(getEnv("SOURCES", SourceTheSportsDB+":0"), sourceTimeout, sourceMaxRetries)
	if err != nil {
		return Config{}, fmt.Errorf("parse SOURCES: %w", err)
	}

	sourceCircuitEnabled, err := strconv.ParseBool(getEnv("SOURCE_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SOURCE_CIRCUIT_ENABLED: %w", err)
	}
	sourceCircuitFailureCount, err := getEnvAsInt("SOURCE_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SOURCE_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	sourceCircuitOpenTimeout, err := time.ParseDuration(getEnv("SOURCE_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SOURCE_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	sourceCircuitHalfOpenMaxReq, err := getEnvAsInt("SOURCE_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SOURCE_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	fetchDaysBack, err := getEnvAsInt("FETCH_DAYS_BACK", 30)
	if err != nil {
		return Config{}, fmt.Errorf("parse FETCH_DAYS_BACK: %w", err)
	}
	fetchDaysAhead, err := getEnvAsInt("FETCH_DAYS_AHEAD", 120)
	if err != nil {
		return Config{}, fmt.Errorf("parse FETCH_DAYS_AHEAD: %w", err)
	}

	retentionRecent, err := getEnvAsInt("RETENTION_RECENT_RESULTS", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse RETENTION_RECENT_RESULTS: %w", err)
	}
	retentionUpcoming, err := getEnvAsInt("RETENTION_UPCOMING_FIXTURES", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse RETENTION_UPCOMING_FIXTURES: %w", err)
	}

	subjectOnly, err := strconv.ParseBool(getEnv("SUBJECT_ONLY", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SUBJECT_ONLY: %w", err)
	}
	degradeToPrevious, err := strconv.ParseBool(getEnv("DEGRADE_TO_PREVIOUS", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DEGRADE_TO_PREVIOUS: %w", err)
	}
	tvEstimateEnabled, err := strconv.ParseBool(getEnv("TV_ESTIMATE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse TV_ESTIMATE_ENABLED: %w", err)
	}
	theSportsDBSeason, err := strconv.ParseBool(getEnv("THESPORTSDB_SEASON_EVENTS", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse THESPORTSDB_SEASON_EVENTS: %w", err)
	}
	teamAliases, err := parseAliasMap(getEnv("TEAM_ALIASES", ""))
	if err != nil {
		return Config{}, fmt.Errorf("parse TEAM_ALIASES: %w", err)
	}

	runTimeout, err := time.ParseDuration(getEnv("RUN_TIMEOUT", "2m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RUN_TIMEOUT: %w", err)
	}

	footballDataTeamID, err := getEnvAsInt64("FOOTBALLDATA_TEAM_ID", 66)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALLDATA_TEAM_ID: %w", err)
	}
	sportMonksTeamID, err := getEnvAsInt64("SPORTMONKS_TEAM_ID", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_TEAM_ID: %w", err)
	}

	dbEnabled, err := strconv.ParseBool(getEnv("DB_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_ENABLED: %w", err)
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}
	dbMaxOpenConns, err := getEnvAsInt("DB_MAX_OPEN_CONNS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	dbConnMaxLifetime, err := time.ParseDuration(getEnv("DB_CONN_MAX_LIFETIME", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_CONN_MAX_LIFETIME: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}

	betterStackEnabled, err := strconv.ParseBool(getEnv("BETTERSTACK_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_ENABLED: %w", err)
	}
	betterStackTimeout, err := time.ParseDuration(getEnv("BETTERSTACK_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_TIMEOUT: %w", err)
	}

	cfg := Config{
		AppEnv:                      appEnv,
		ServiceName:                 getEnv("APP_SERVICE_NAME", "fixture-feed"),
		ServiceVersion:              getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:                    parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		SubjectTeam:                 strings.TrimSpace(getEnv("SUBJECT_TEAM", "Manchester United")),
		SubjectCompetition:          strings.TrimSpace(getEnv("SUBJECT_COMPETITION", "Premier League")),
		ReferenceTimezone:           referenceTimezone,
		Location:                    location,
		DefaultKickoff:              defaultKickoff,
		Sources:                     sources,
		SourceRetryBaseDelay:        sourceRetryBaseDelay,
		SourceCircuitEnabled:        sourceCircuitEnabled,
		SourceCircuitFailureCount:   sourceCircuitFailureCount,
		SourceCircuitOpenTimeout:    sourceCircuitOpenTimeout,
		SourceCircuitHalfOpenMaxReq: sourceCircuitHalfOpenMaxReq,
		FetchDaysBack:               fetchDaysBack,
		FetchDaysAhead:              fetchDaysAhead,
		RetentionRecentResults:      retentionRecent,
		RetentionUpcomingFixtures:   retentionUpcoming,
		SubjectOnly:                 subjectOnly,
		OverrideFile:                strings.TrimSpace(getEnv("OVERRIDE_FILE", "assets/tv_overrides.json")),
		OutputFile:                  strings.TrimSpace(getEnv("OUTPUT_FILE", "assets/fixtures.json")),
		DegradeToPrevious:           degradeToPrevious,
		TVEstimateEnabled:           tvEstimateEnabled,
		TeamAliases:                 teamAliases,
		RunTimeout:                  runTimeout,
		TheSportsDBBaseURL:          strings.TrimSpace(getEnv("THESPORTSDB_BASE_URL", "https://www.thesportsdb.com/api/v1/json")),
		TheSportsDBKey:              strings.TrimSpace(getEnv("THESPORTSDB_KEY", "3")),
		TheSportsDBTeamID:           strings.TrimSpace(getEnv("THESPORTSDB_TEAM_ID", "133612")),
		TheSportsDBSeason:           theSportsDBSeason,
		FootballDataBaseURL:         strings.TrimSpace(getEnv("FOOTBALLDATA_BASE_URL", "https://api.football-data.org/v4")),
		FootballDataToken:           strings.TrimSpace(getEnv("FOOTBALLDATA_TOKEN", "")),
		FootballDataTeamID:          footballDataTeamID,
		SportMonksBaseURL:           strings.TrimSpace(getEnv("SPORTMONKS_BASE_URL", "https://api.sportmonks.com/v3/football")),
		SportMonksToken:             strings.TrimSpace(getEnv("SPORTMONKS_TOKEN", "")),
		SportMonksTeamID:            sportMonksTeamID,
		DBEnabled:                   dbEnabled,
		DBURL:                       strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary:     dbDisablePreparedBinary,
		DBMaxOpenConns:              dbMaxOpenConns,
		DBConnMaxLifetime:           dbConnMaxLifetime,
		UptraceEnabled:              uptraceEnabled,
		UptraceDSN:                  uptraceDSN,
		BetterStackEnabled:          betterStackEnabled,
		BetterStackEndpoint:         strings.TrimSpace(getEnv("BETTERSTACK_ENDPOINT", "")),
		BetterStackToken:            strings.TrimSpace(getEnv("BETTERSTACK_TOKEN", "")),
		BetterStackTimeout:          betterStackTimeout,
		BetterStackMinLevel:         parseLogLevel(getEnv("BETTERSTACK_MIN_LEVEL", "warn")),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	if _, ok := cfg.Source(SourceFootballData); ok && cfg.FootballDataToken == "" {
		return Config{}, fmt.Errorf("FOOTBALLDATA_TOKEN is required when SOURCES includes %s", SourceFootballData)
	}
	if _, ok := cfg.Source(SourceSportMonks); ok {
		if cfg.SportMonksToken == "" {
			return Config{}, fmt.Errorf("SPORTMONKS_TOKEN is required when SOURCES includes %s", SourceSportMonks)
		}
		if cfg.SportMonksTeamID <= 0 {
			return Config{}, fmt.Errorf("SPORTMONKS_TEAM_ID is required when SOURCES includes %s", SourceSportMonks)
		}
	}

	return cfg, nil
}

// parseSources reads "id:priority,id:priority". Per-source <ID>_TIMEOUT and
// <ID>_MAX_RETRIES override the shared defaults.
func parseSources(raw string, timeout time.Duration, maxRetries int) ([]SourceConfig, error) {
	seen := make(map[string]struct{})
	out := make([]SourceConfig, 0, 3)
	for _, item := range splitCSV(raw) {
		segments := strings.SplitN(item, ":", 2)
		id := strings.ToLower(strings.TrimSpace(segments[0]))
		if id == "" {
			return nil, fmt.Errorf("empty source id in item %q", item)
		}
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("duplicate source %q", id)
		}
		seen[id] = struct{}{}

		priority := len(out)
		if len(segments) == 2 {
			value, err := strconv.Atoi(strings.TrimSpace(segments[1]))
			if err != nil {
				return nil, fmt.Errorf("invalid priority in item %q: %w", item, err)
			}
			priority = value
		}

		prefix := strings.ToUpper(id)
		sourceTimeout, err := time.ParseDuration(getEnv(prefix+"_TIMEOUT", timeout.String()))
		if err != nil {
			return nil, fmt.Errorf("parse %s_TIMEOUT: %w", prefix, err)
		}
		sourceRetries, err := getEnvAsInt(prefix+"_MAX_RETRIES", maxRetries)
		if err != nil {
			return nil, fmt.Errorf("parse %s_MAX_RETRIES: %w", prefix, err)
		}

		out = append(out, SourceConfig{
			ID:         id,
			Priority:   priority,
			Timeout:    sourceTimeout,
			MaxRetries: sourceRetries,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// parseAliasMap reads "alias=canonical;alias=canonical". Semicolons keep
// commas free for names such as "Brighton & Hove Albion".
func parseAliasMap(raw string) (map[string]string, error) {
	out := make(map[string]string)
	for _, part := range strings.Split(raw, ";") {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		segments := strings.SplitN(item, "=", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("invalid alias item %q, expected alias=canonical", item)
		}
		alias := strings.TrimSpace(segments[0])
		canonical := strings.TrimSpace(segments[1])
		if alias == "" || canonical == "" {
			return nil, fmt.Errorf("empty alias or canonical name in item %q", item)
		}
		out[alias] = canonical
	}
	return out, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsInt64(key string, fallback int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	return strconv.ParseInt(value, 10, 64)
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
