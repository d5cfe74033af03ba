package override

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeJSON_Sections(t *testing.T) {
	raw := []byte(`{
		"by_date": {"2025-09-20": "Sky Sports"},
		"by_exact": {
			"2025-09-27 Brentford": "TNT Sports",
			"2025-10-04 Sunderland": {"tv": "Sky Sports Main Event", "highlights": ["https://example.com/h1", "https://example.com/h2"]}
		}
	}`)

	table, err := DecodeJSON(raw)
	require.NoError(t, err)
	require.Equal(t, Entry{TV: "Sky Sports"}, table.ByDate["2025-09-20"])
	require.Equal(t, Entry{TV: "TNT Sports"}, table.ByExact["2025-09-27 Brentford"])
	require.Equal(t, Entry{TV: "Sky Sports Main Event", Highlights: "https://example.com/h1"}, table.ByExact["2025-10-04 Sunderland"])
	require.Equal(t, 3, table.Len())
}

func TestDecodeJSON_LegacyFlat(t *testing.T) {
	table, err := DecodeJSON([]byte(`{"2025-09-20 Chelsea": "Sky Sports", "2025-10-25 Brighton": "TNT Sports"}`))
	require.NoError(t, err)
	require.Empty(t, table.ByDate)
	require.Equal(t, "Sky Sports", table.ByExact["2025-09-20 Chelsea"].TV)
	require.Equal(t, "TNT Sports", table.ByExact["2025-10-25 Brighton"].TV)
}

func TestDecodeJSON_Invalid(t *testing.T) {
	_, err := DecodeJSON([]byte(`["not", "an", "object"]`))
	require.Error(t, err)
}

func TestDecodeYAML(t *testing.T) {
	raw := []byte(`
by_date:
  "2025-09-20": Sky Sports
by_exact:
  "2025-10-04 Sunderland":
    tv: Sky Sports Main Event
    highlights: https://example.com/h1
`)

	table, err := DecodeYAML(raw)
	require.NoError(t, err)
	require.Equal(t, "Sky Sports", table.ByDate["2025-09-20"].TV)
	require.Equal(t, Entry{TV: "Sky Sports Main Event", Highlights: "https://example.com/h1"}, table.ByExact["2025-10-04 Sunderland"])

	legacy, err := DecodeYAML([]byte(`"2025-09-20 Chelsea": Sky Sports`))
	require.NoError(t, err)
	require.Equal(t, "Sky Sports", legacy.ByExact["2025-09-20 Chelsea"].TV)

	empty, err := DecodeYAML([]byte(""))
	require.NoError(t, err)
	require.True(t, empty.IsEmpty())
}

func TestParseExactKey(t *testing.T) {
	key, ok := ParseExactKey(" 2025-09-20 Brighton & Hove Albion ")
	require.True(t, ok)
	require.Equal(t, ExactKey{Date: "2025-09-20", Opponent: "Brighton & Hove Albion"}, key)

	for _, raw := range []string{"2025-09-20", "2025-09-20 ", "Chelsea 2025-09-20", ""} {
		_, ok := ParseExactKey(raw)
		require.False(t, ok, raw)
	}
}
