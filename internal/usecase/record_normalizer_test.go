package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fixture-feed/internal/domain/kickoff"
	"github.com/riskibarqy/fixture-feed/internal/domain/match"
	"github.com/riskibarqy/fixture-feed/internal/domain/source"
	sourcemock "github.com/riskibarqy/fixture-feed/internal/mocks/domain/source"
	"github.com/riskibarqy/fixture-feed/internal/platform/logging"
)

// stubSource serves canned events and reads them back with flat keys.
type stubSource struct {
	id      string
	events  []source.RawEvent
	err     error
	onFetch func()
}

func (s stubSource) ID() string {
	return s.id
}

func (s stubSource) Fetch(_ context.Context) ([]source.RawEvent, error) {
	if s.onFetch != nil {
		s.onFetch()
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make([]source.RawEvent, len(s.events))
	copy(out, s.events)
	return out, nil
}

func (s stubSource) Extract(raw source.RawEvent) (source.Record, error) {
	f := raw.Fields
	return source.Record{
		HomeTeam:    source.GetString(f, "home"),
		AwayTeam:    source.GetString(f, "away"),
		Competition: source.GetString(f, "competition"),
		HomeScore:   f["home_score"],
		AwayScore:   f["away_score"],
		Status:      source.GetString(f, "status"),
		TV:          source.GetString(f, "tv"),
		Kickoff: kickoff.Input{
			DateTime: source.GetString(f, "datetime"),
			Date:     source.GetString(f, "date"),
			Time:     source.GetString(f, "time"),
		},
	}, nil
}

func event(fields map[string]any) source.RawEvent {
	return source.RawEvent{Fields: fields}
}

func mustLondon(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("load Europe/London: %v", err)
	}
	return loc
}

func newTestRecordNormalizer(t *testing.T) *RecordNormalizer {
	t.Helper()
	times := kickoff.NewNormalizer(kickoff.Config{
		Location:       mustLondon(t),
		DefaultKickoff: kickoff.TimeOfDay{Hour: 15},
	})
	return NewRecordNormalizer(times, match.NewTeamNormalizer(nil), logging.NewNop())
}

func TestCoerceScore(t *testing.T) {
	tests := []struct {
		name string
		home any
		away any
		want *match.Score
	}{
		{name: "floats", home: float64(2), away: float64(1), want: &match.Score{Home: 2, Away: 1}},
		{name: "numeric strings", home: " 3 ", away: "0", want: &match.Score{Home: 3, Away: 0}},
		{name: "ints", home: 1, away: int64(1), want: &match.Score{Home: 1, Away: 1}},
		{name: "one side missing", home: float64(2), away: nil},
		{name: "empty string", home: "", away: "1"},
		{name: "negative", home: float64(-1), away: float64(0)},
		{name: "fraction", home: 1.5, away: float64(0)},
		{name: "not numeric", home: "two", away: "one"},
		{name: "bool", home: true, away: false},
		{name: "huge float", home: 1e300, away: float64(0)},
		{name: "huge string", home: "99999999999999999999", away: "1"},
		{name: "huge exponent string", home: "1e19", away: "0"},
		{name: "just above int32", home: int64(math.MaxInt32) + 1, away: 0},
		{name: "int32 max", home: int64(math.MaxInt32), away: 0, want: &match.Score{Home: math.MaxInt32, Away: 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := coerceScore(tc.home, tc.away)
			if tc.want == nil {
				if got != nil {
					t.Fatalf("expected no score, got %+v", *got)
				}
				return
			}
			if got == nil || *got != *tc.want {
				t.Fatalf("unexpected score: got=%v want=%+v", got, *tc.want)
			}
		})
	}
}

func TestRecordNormalizer_Normalize(t *testing.T) {
	n := newTestRecordNormalizer(t)
	src := stubSource{id: "alpha"}

	t.Run("finished with exact kickoff", func(t *testing.T) {
		raw := event(map[string]any{
			"home": " Man Utd ", "away": "Chelsea FC",
			"datetime":   "2025-09-20T16:30:00Z",
			"home_score": "2", "away_score": "1",
			"competition": " Premier League ", "tv": " Sky Sports ",
		})
		raw.SourceID = "alpha"
		raw.Priority = 1

		fragment, err := n.Normalize(src, raw)
		require.NoError(t, err)
		require.Equal(t, "Man Utd", fragment.HomeTeam)
		require.Equal(t, "manchester united", fragment.HomeKey)
		require.Equal(t, "chelsea", fragment.AwayKey)
		require.Equal(t, time.Date(2025, 9, 20, 16, 30, 0, 0, time.UTC), fragment.Kickoff)
		require.Equal(t, kickoff.PrecisionExact, fragment.Precision)
		require.Equal(t, match.StatusFinished, fragment.Status())
		require.Equal(t, &match.Score{Home: 2, Away: 1}, fragment.Score)
		require.Equal(t, "Premier League", fragment.Competition)
		require.Equal(t, "Sky Sports", fragment.TV)
		require.Equal(t, 1, fragment.Priority)
		require.Equal(t, "2025-09-20|manchester united|chelsea", fragment.Key.String())
	})

	t.Run("live status discards score", func(t *testing.T) {
		fragment, err := n.Normalize(src, event(map[string]any{
			"home": "Fulham", "away": "Manchester United",
			"date": "2025-08-24", "time": "16:30",
			"home_score": float64(1), "away_score": float64(1),
			"status": "In Play",
		}))
		require.NoError(t, err)
		require.Nil(t, fragment.Score)
		require.Equal(t, match.StatusScheduled, fragment.Status())
		require.Equal(t, "alpha", fragment.SourceID)
		require.Equal(t, time.Date(2025, 8, 24, 15, 30, 0, 0, time.UTC), fragment.Kickoff)
	})

	t.Run("date only", func(t *testing.T) {
		fragment, err := n.Normalize(src, event(map[string]any{
			"home": "Manchester United", "away": "Sunderland", "date": "2025-10-04", "time": "TBD",
		}))
		require.NoError(t, err)
		require.Equal(t, kickoff.PrecisionDateOnly, fragment.Precision)
		require.Equal(t, time.Date(2025, 10, 4, 14, 0, 0, 0, time.UTC), fragment.Kickoff)
	})

	t.Run("missing team", func(t *testing.T) {
		_, err := n.Normalize(src, event(map[string]any{"home": "Chelsea", "away": "  ", "date": "2025-10-04"}))
		if !errors.Is(err, ErrMalformedRecord) {
			t.Fatalf("expected ErrMalformedRecord, got %v", err)
		}
	})

	t.Run("bad kickoff", func(t *testing.T) {
		_, err := n.Normalize(src, event(map[string]any{"home": "Chelsea", "away": "Arsenal", "date": "next saturday"}))
		if !errors.Is(err, ErrTimeParse) {
			t.Fatalf("expected ErrTimeParse, got %v", err)
		}
	})
}

func TestRecordNormalizer_NormalizeAllDropsFailures(t *testing.T) {
	n := newTestRecordNormalizer(t)
	src := sourcemock.NewFragmentSource(t)

	src.On("ID").Return("mocked").Maybe()
	src.
		On("Extract", mock.Anything).
		Return(func(raw source.RawEvent) (source.Record, error) {
			if raw.Fields["broken"] == true {
				return source.Record{}, errors.New("payload shape changed")
			}
			return source.Record{
				HomeTeam: source.GetString(raw.Fields, "home"),
				AwayTeam: "Chelsea",
				Kickoff:  kickoff.Input{DateTime: "2025-09-20T16:30:00Z"},
			}, nil
		}).
		Times(3)

	events := []source.RawEvent{
		{SourceID: "mocked", Fields: map[string]any{"home": "Arsenal"}},
		{SourceID: "mocked", Fields: map[string]any{"broken": true}},
		{SourceID: "mocked", Fields: map[string]any{"home": "Everton"}},
	}

	fragments := n.NormalizeAll(context.Background(), src, events)
	require.Len(t, fragments, 2)
	require.Equal(t, "arsenal", fragments[0].HomeKey)
	require.Equal(t, "everton", fragments[1].HomeKey)
}
