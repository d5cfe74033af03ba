package sportmonks

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
	"github.com/riskibarqy/fixture-feed/internal/domain/match"
	"github.com/riskibarqy/fixture-feed/internal/domain/source"
	"github.com/riskibarqy/fixture-feed/internal/platform/httpclient"
	"github.com/riskibarqy/fixture-feed/internal/platform/logging"
	"github.com/riskibarqy/fixture-feed/internal/platform/resilience"
)

const (
	SourceID         = "sportmonks"
	defaultBaseURL   = "https://api.sportmonks.com/v3/football"
	defaultInclude   = "participants;scores;state;league;tvStations.tvstation"
	dateLayout       = "2006-01-02"
	defaultPerPage   = 50
	maxFixturePages  = 10
	currentScoreDesc = "current"
)

var errMissingTeams = crerr.New("sportmonks fixture has no home/away participants")

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

type Client struct {
	http      *httpclient.Client
	token     string
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
			Secrets:        []string{token},
			Retry:          cfg.Retry,
			CircuitBreaker: cfg.CircuitBreaker,
			Logger:         logger,
			HTTPClient:     cfg.HTTPClient,
		}),
		token:     token,
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

// Fetch pages through /fixtures/between for the configured team and window.
func (c *Client) Fetch(ctx context.Context) ([]source.RawEvent, error) {
	today := c.now().UTC()
	from := today.AddDate(0, 0, -c.daysBack).Format(dateLayout)
	to := today.AddDate(0, 0, c.daysAhead).Format(dateLayout)
	path := fmt.Sprintf("/fixtures/between/%s/%s/%d", from, to, c.teamID)

	out := make([]source.RawEvent, 0, defaultPerPage)
	seen := make(map[int64]struct{})
	page := 1
	for ; page <= maxFixturePages; page++ {
		query := url.Values{
			"api_token": {c.token},
			"include":   {defaultInclude},
			"per_page":  {strconv.Itoa(defaultPerPage)},
			"page":      {strconv.Itoa(page)},
		}

		var envelope fixturesEnvelope
		if _, err := c.http.GetJSON(ctx, path, query, &envelope); err != nil {
			return nil, fmt.Errorf("fetch sportmonks fixtures page=%d: %w", page, err)
		}

		for _, item := range envelope.Data {
			if item == nil {
				continue
			}
			if id := source.GetInt64(item, "id"); id > 0 {
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
			}
			out = append(out, source.RawEvent{SourceID: SourceID, Fields: item})
		}

		if !envelope.Pagination.HasMore {
			break
		}
	}
	if page > maxFixturePages {
		c.logger.WarnContext(ctx, "sportmonks pagination truncated", "pages", maxFixturePages, "fixtures", len(out))
	}

	c.logger.DebugContext(ctx, "sportmonks fixtures fetched", "team_id", c.teamID, "from", from, "to", to, "fixtures", len(out))
	return out, nil
}

func (c *Client) Extract(raw source.RawEvent) (source.Record, error) {
	fields := raw.Fields
	participants := parseParticipants(fields)
	home, away, homeID, awayID := resolveFixtureParticipants(participants)
	if home == "" || away == "" {
		if name := source.GetString(fields, "name"); name != "" {
			home, away = splitFixtureName(name)
		}
	}
	if home == "" || away == "" {
		return source.Record{}, crerr.Wrapf(errMissingTeams, "fixture %d", source.GetInt64(fields, "id"))
	}

	homeScore, awayScore := resolveFixtureScores(parseScores(fields), homeID, awayID)

	return source.Record{
		HomeTeam:    home,
		AwayTeam:    away,
		Competition: source.GetString(source.GetMap(fields, "league"), "name"),
		HomeScore:   homeScore,
		AwayScore:   awayScore,
		Status:      fixtureStatus(fields),
		TV:          firstTVStation(fields),
		Kickoff:     kickoffInput(fields),
	}, nil
}

// starting_at is UTC without an offset, e.g. "2025-09-20 16:30:00".
func kickoffInput(fields map[string]any) kickoff.Input {
	startingAt := source.GetString(fields, "starting_at")
	if startingAt == "" {
		if ts := source.GetInt64(fields, "starting_at_timestamp"); ts > 0 {
			return kickoff.Input{DateTime: time.Unix(ts, 0).UTC().Format(time.RFC3339)}
		}
		return kickoff.Input{}
	}
	date, clock, _ := strings.Cut(strings.Replace(startingAt, "T", " ", 1), " ")
	return kickoff.Input{Date: date, Time: clock, Location: time.UTC}
}

func resolveFixtureParticipants(participants []participant) (string, string, int64, int64) {
	var homeName, awayName string
	var homeID, awayID int64
	for _, item := range participants {
		switch item.Location {
		case "home":
			homeName = item.Name
			homeID = item.ID
		case "away":
			awayName = item.Name
			awayID = item.ID
		}
	}
	return homeName, awayName, homeID, awayID
}

// resolveFixtureScores keeps the values of the heaviest score description
// (CURRENT first). Halves missing on either side yield no score.
func resolveFixtureScores(scores []scoreItem, homeID, awayID int64) (any, any) {
	bestWeight := 0
	var home, away any
	for _, score := range scores {
		if score.Goals == nil {
			continue
		}
		side := score.Side
		switch {
		case homeID > 0 && score.ParticipantID == homeID:
			side = "home"
		case awayID > 0 && score.ParticipantID == awayID:
			side = "away"
		}
		if side != "home" && side != "away" {
			continue
		}

		weight := scoreDescriptionWeight(score.Description)
		if weight > bestWeight {
			bestWeight = weight
			home, away = nil, nil
		}
		if weight < bestWeight {
			continue
		}
		if side == "home" {
			home = score.Goals
		} else {
			away = score.Goals
		}
	}
	if home == nil || away == nil {
		return nil, nil
	}
	return home, away
}

func scoreDescriptionWeight(raw string) int {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case value == currentScoreDesc:
		return 6
	case strings.Contains(value, "normal_time"), strings.Contains(value, "90"):
		return 5
	case strings.Contains(value, "extra_time"):
		return 4
	case strings.Contains(value, "penalt"):
		return 3
	case value == "1st_half", value == "2nd_half":
		return 2
	default:
		return 1
	}
}

func fixtureStatus(fields map[string]any) string {
	state := source.GetMap(fields, "state")
	stateID := source.GetInt64(fields, "state_id")
	if stateID == 0 {
		stateID = source.GetInt64(state, "id")
	}
	return mapFixtureStatus(stateID, source.FirstNonEmpty(source.GetString(state, "developer_name"), source.GetString(fields, "result_info")))
}

func mapFixtureStatus(stateID int64, info string) string {
	switch stateID {
	case 2, 3, 4, 6, 7, 8, 9, 22, 25:
		return match.RawStatusLive
	case 5, 13, 14:
		return match.RawStatusFinished
	case 10:
		return match.RawStatusPostponed
	case 11, 12:
		return match.RawStatusCancelled
	case 1:
		return match.RawStatusScheduled
	}

	value := strings.ToLower(strings.TrimSpace(info))
	switch {
	case strings.Contains(value, "postpon"):
		return match.RawStatusPostponed
	case strings.Contains(value, "cancel"), strings.Contains(value, "abandon"):
		return match.RawStatusCancelled
	case strings.Contains(value, "inplay"), strings.Contains(value, "live"), strings.Contains(value, "in play"), strings.Contains(value, "half"):
		return match.RawStatusLive
	case strings.Contains(value, "finish"), strings.Contains(value, "full time"), value == "ft", strings.Contains(value, "aet"), strings.Contains(value, "pen"):
		return match.RawStatusFinished
	default:
		return match.RawStatusScheduled
	}
}

func firstTVStation(fields map[string]any) string {
	for _, item := range source.GetSlice(fields, "tvstations") {
		if name := source.GetString(source.GetMap(item, "tvstation"), "name"); name != "" {
			return name
		}
	}
	return ""
}

func splitFixtureName(name string) (string, string) {
	parts := strings.SplitN(name, " vs ", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}
