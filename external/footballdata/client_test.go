package footballdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fixture-feed/internal/domain/source"
)

const matchesPayload = `{
	"matches": [
		{
			"id": 537785,
			"utcDate": "2025-09-20T16:30:00Z",
			"status": "FINISHED",
			"competition": {"name": "Premier League"},
			"homeTeam": {"name": "Manchester United FC", "shortName": "Man United"},
			"awayTeam": {"name": "Chelsea FC", "shortName": "Chelsea"},
			"score": {"fullTime": {"home": 2, "away": 1}}
		},
		{
			"id": 537800,
			"utcDate": "2025-10-04T14:00:00Z",
			"status": "TIMED",
			"competition": {"name": "Premier League"},
			"homeTeam": {"name": "Manchester United FC"},
			"awayTeam": {"name": "Sunderland AFC"},
			"score": {"fullTime": {"home": null, "away": null}}
		}
	]
}`

func TestClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/teams/66/matches", r.URL.Path)
		require.Equal(t, "token-123", r.Header.Get("X-Auth-Token"))
		require.Equal(t, "2025-08-21", r.URL.Query().Get("dateFrom"))
		require.Equal(t, "2026-01-18", r.URL.Query().Get("dateTo"))
		_, _ = w.Write([]byte(matchesPayload))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		BaseURL:   srv.URL,
		Token:     "token-123",
		TeamID:    66,
		DaysBack:  30,
		DaysAhead: 120,
		Timeout:   time.Second,
		Now: func() time.Time {
			return time.Date(2025, time.September, 20, 9, 0, 0, 0, time.UTC)
		},
	})

	events, err := client.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)

	record, err := client.Extract(events[0])
	require.NoError(t, err)
	require.Equal(t, "Manchester United FC", record.HomeTeam)
	require.Equal(t, "Chelsea FC", record.AwayTeam)
	require.Equal(t, "Premier League", record.Competition)
	require.Equal(t, "2025-09-20T16:30:00Z", record.Kickoff.DateTime)
	require.EqualValues(t, 2, record.HomeScore)
	require.EqualValues(t, 1, record.AwayScore)
	require.Equal(t, "FINISHED", record.Status)

	upcoming, err := client.Extract(events[1])
	require.NoError(t, err)
	require.Nil(t, upcoming.HomeScore)
	require.Nil(t, upcoming.AwayScore)
}

func TestClient_FetchUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"The resource you are looking for is restricted."}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, Token: "bad", TeamID: 66, Timeout: time.Second})

	_, err := client.Fetch(context.Background())
	require.Error(t, err)
}

func TestClient_ExtractMissingTeams(t *testing.T) {
	client := NewClient(ClientConfig{TeamID: 66})

	_, err := client.Extract(source.RawEvent{Fields: map[string]any{
		"homeTeam": map[string]any{"name": nil},
		"awayTeam": map[string]any{"name": "Chelsea FC"},
	}})
	require.Error(t, err)
}
