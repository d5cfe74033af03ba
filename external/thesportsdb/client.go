package thesportsdb

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"

	"github.com/riskibarqy/fixture-feed/internal/domain/kickoff"
	"github.com/riskibarqy/fixture-feed/internal/domain/source"
	"github.com/riskibarqy/fixture-feed/internal/platform/httpclient"
	"github.com/riskibarqy/fixture-feed/internal/platform/logging"
	"github.com/riskibarqy/fixture-feed/internal/platform/resilience"
)

const (
	SourceID       = "thesportsdb"
	defaultBaseURL = "https://www.thesportsdb.com/api/v1/json"
	defaultAPIKey  = "3"
)

var errMissingTeams = crerr.New("thesportsdb event has no teams")

type ClientConfig struct {
	BaseURL        string
	APIKey         string
	TeamID         string
	SeasonEvents   bool
	Timeout        time.Duration
	Retry          resilience.RetryConfig
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
	HTTPClient     *fasthttp.Client
	Now            func() time.Time
}

// Client reads the next and last events of one team from the v1 JSON API,
// plus the whole current season when SeasonEvents is set.
type Client struct {
	http         *httpclient.Client
	apiKey       string
	teamID       string
	seasonEvents bool
	now          func() time.Time
	logger       *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		apiKey = defaultAPIKey
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		http: httpclient.New(httpclient.Config{
			Name:           SourceID,
			BaseURL:        baseURL,
			Timeout:        cfg.Timeout,
			Secrets:        []string{apiKey},
			Retry:          cfg.Retry,
			CircuitBreaker: cfg.CircuitBreaker,
			Logger:         logger,
			HTTPClient:     cfg.HTTPClient,
		}),
		apiKey:       apiKey,
		teamID:       strings.TrimSpace(cfg.TeamID),
		seasonEvents: cfg.SeasonEvents,
		now:          now,
		logger:       logger,
	}
}

func (c *Client) ID() string {
	return SourceID
}

// Fetch returns upcoming events followed by recent results and, when
// enabled, the season list. Any list failing fails the whole fetch. An event
// seen twice keeps its first copy.
func (c *Client) Fetch(ctx context.Context) ([]source.RawEvent, error) {
	query := url.Values{"id": {c.teamID}}

	var next eventsEnvelope
	if _, err := c.http.GetJSON(ctx, c.path("eventsnext.php"), query, &next); err != nil {
		return nil, fmt.Errorf("fetch thesportsdb next events: %w", err)
	}

	var last eventsEnvelope
	if _, err := c.http.GetJSON(ctx, c.path("eventslast.php"), query, &last); err != nil {
		return nil, fmt.Errorf("fetch thesportsdb last events: %w", err)
	}

	var season eventsEnvelope
	seasonLabel := ""
	if c.seasonEvents {
		seasonLabel = kickoff.Season(c.now().UTC())
		seasonQuery := url.Values{"id": {c.teamID}, "s": {seasonLabel}}
		if _, err := c.http.GetJSON(ctx, c.path("eventsseason.php"), seasonQuery, &season); err != nil {
			return nil, fmt.Errorf("fetch thesportsdb season %s events: %w", seasonLabel, err)
		}
	}

	items := make([]map[string]any, 0, len(next.Events)+len(next.Results)+len(last.Events)+len(last.Results)+len(season.Events))
	items = append(items, next.Events...)
	items = append(items, next.Results...)
	items = append(items, last.Results...)
	items = append(items, last.Events...)
	items = append(items, season.Events...)

	seen := make(map[string]struct{}, len(items))
	out := make([]source.RawEvent, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if id := source.GetString(item, "idEvent"); id != "" {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
		}
		out = append(out, source.RawEvent{SourceID: SourceID, Fields: item})
	}

	c.logger.DebugContext(ctx, "thesportsdb events fetched", "team_id", c.teamID, "upcoming", len(next.Events), "recent", len(last.Results), "season", seasonLabel, "season_events", len(season.Events), "events", len(out))
	return out, nil
}

func (c *Client) Extract(raw source.RawEvent) (source.Record, error) {
	fields := raw.Fields
	home := source.GetString(fields, "strHomeTeam")
	away := source.GetString(fields, "strAwayTeam")
	if home == "" && away == "" {
		if name := source.GetString(fields, "strEvent"); name != "" {
			home, away = splitEventName(name)
		}
	}
	if home == "" || away == "" {
		return source.Record{}, crerr.Wrapf(errMissingTeams, "event %s", source.GetString(fields, "idEvent"))
	}

	return source.Record{
		HomeTeam:    home,
		AwayTeam:    away,
		Competition: source.GetString(fields, "strLeague"),
		HomeScore:   fields["intHomeScore"],
		AwayScore:   fields["intAwayScore"],
		Status:      source.GetString(fields, "strStatus"),
		TV:          source.FirstNonEmpty(source.GetString(fields, "strTVStation"), source.GetString(fields, "strTVChannel")),
		Kickoff:     kickoffInput(fields),
	}, nil
}

func (c *Client) path(endpoint string) string {
	return "/" + url.PathEscape(c.apiKey) + "/" + endpoint
}

// kickoffInput prefers strTimestamp (UTC), then the local date and time,
// then the UTC date and time, then the bare date.
func kickoffInput(fields map[string]any) kickoff.Input {
	in := kickoff.Input{}
	if ts := source.GetString(fields, "strTimestamp"); ts != "" {
		in.DateTime = withUTCOffset(ts)
	}

	localDate := source.GetString(fields, "dateEvent")
	localTime := source.GetString(fields, "strTimeLocal")
	utcDate := source.FirstNonEmpty(source.GetString(fields, "dateEventUTC"), localDate)
	utcTime := source.FirstNonEmpty(source.GetString(fields, "strTimeUTC"), source.GetString(fields, "strTime"))

	switch {
	case localDate != "" && localTime != "":
		in.Date, in.Time = localDate, localTime
	case utcDate != "" && utcTime != "":
		in.Date, in.Time, in.Location = utcDate, utcTime, time.UTC
	default:
		in.Date = localDate
	}
	return in
}

// withUTCOffset marks a naive strTimestamp as UTC.
func withUTCOffset(ts string) string {
	value := strings.Replace(strings.TrimSpace(ts), " ", "T", 1)
	if len(value) <= len("2006-01-02") {
		return value
	}
	clock := value[len("2006-01-02"):]
	if strings.HasSuffix(clock, "Z") || strings.ContainsAny(clock, "+-") {
		return value
	}
	return value + "+00:00"
}

func splitEventName(name string) (string, string) {
	parts := strings.SplitN(name, " vs ", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}

type eventsEnvelope struct {
	Events  []map[string]any `json:"events"`
	Results []map[string]any `json:"results"`
}
