package footballdata

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
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
	SourceID       = "footballdata"
	defaultBaseURL = "https://api.football-data.org/v4"
	dateLayout     = "2006-01-02"
)

var errMissingTeams = crerr.New("football-data match has no teams")

type ClientConfig struct {
	BaseURL        string
	Token          string
	TeamID         int64
	DaysBack       int
	DaysAhead      int
	Timeout        time.Duration
	Retry          resilience.RetryConfig
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
	HTTPClient     *fasthttp.Client
	Now            func() time.Time
}

// Client reads one team's matches from the football-data.org v4 API.
type Client struct {
	http      *httpclient.Client
	teamID    int64
	daysBack  int
	daysAhead int
	now       func() time.Time
	logger    *logging.Logger
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
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	token := strings.TrimSpace(cfg.Token)

	return &Client{
		http: httpclient.New(httpclient.Config{
			Name:           SourceID,
			BaseURL:        baseURL,
			Timeout:        cfg.Timeout,
			Headers:        map[string]string{"X-Auth-Token": token},
			Secrets:        []string{token},
			Retry:          cfg.Retry,
			CircuitBreaker: cfg.CircuitBreaker,
			Logger:         logger,
			HTTPClient:     cfg.HTTPClient,
		}),
		teamID:    cfg.TeamID,
		daysBack:  max(cfg.DaysBack, 0),
		daysAhead: max(cfg.DaysAhead, 0),
		now:       now,
		logger:    logger,
	}
}

func (c *Client) ID() string {
	return SourceID
}

func (c *Client) Fetch(ctx context.Context) ([]source.RawEvent, error) {
	today := c.now().UTC()
	query := url.Values{
		"dateFrom": {today.AddDate(0, 0, -c.daysBack).Format(dateLayout)},
		"dateTo":   {today.AddDate(0, 0, c.daysAhead).Format(dateLayout)},
	}

	var envelope matchesEnvelope
	path := "/teams/" + strconv.FormatInt(c.teamID, 10) + "/matches"
	if _, err := c.http.GetJSON(ctx, path, query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch football-data matches: %w", err)
	}

	out := make([]source.RawEvent, 0, len(envelope.Matches))
	for _, item := range envelope.Matches {
		if item == nil {
			continue
		}
		out = append(out, source.RawEvent{SourceID: SourceID, Fields: item})
	}

	c.logger.DebugContext(ctx, "football-data matches fetched", "team_id", c.teamID, "date_from", query.Get("dateFrom"), "date_to", query.Get("dateTo"), "matches", len(out))
	return out, nil
}

func (c *Client) Extract(raw source.RawEvent) (source.Record, error) {
	fields := raw.Fields
	homeTeam := source.GetMap(fields, "homeTeam")
	awayTeam := source.GetMap(fields, "awayTeam")
	home := source.FirstNonEmpty(source.GetString(homeTeam, "name"), source.GetString(homeTeam, "shortName"))
	away := source.FirstNonEmpty(source.GetString(awayTeam, "name"), source.GetString(awayTeam, "shortName"))
	if home == "" || away == "" {
		return source.Record{}, crerr.Wrapf(errMissingTeams, "match %s", source.GetString(fields, "id"))
	}

	fullTime := source.GetMap(source.GetMap(fields, "score"), "fullTime")

	return source.Record{
		HomeTeam:    home,
		AwayTeam:    away,
		Competition: source.GetString(source.GetMap(fields, "competition"), "name"),
		HomeScore:   lookup(fullTime, "home"),
		AwayScore:   lookup(fullTime, "away"),
		Status:      source.GetString(fields, "status"),
		Kickoff:     kickoff.Input{DateTime: source.GetString(fields, "utcDate")},
	}, nil
}

func lookup(src map[string]any, key string) any {
	if src == nil {
		return nil
	}
	return src[key]
}

type matchesEnvelope struct {
	Matches []map[string]any `json:"matches"`
}
