package source

import "testing"

func TestFieldHelpers(t *testing.T) {
	fields := map[string]any{
		"name":    "  Chelsea ",
		"score":   float64(2),
		"idText":  "42",
		"nothing": nil,
		"league":  map[string]any{"data": map[string]any{"name": "Premier League"}},
		"teams": map[string]any{"data": []any{
			map[string]any{"name": "Chelsea"},
			"skip",
			map[string]any{"name": "Arsenal"},
		}},
	}

	if got := GetString(fields, "name"); got != "Chelsea" {
		t.Fatalf("unexpected string: %q", got)
	}
	if got := GetString(fields, "score"); got != "2" {
		t.Fatalf("unexpected numeric string: %q", got)
	}
	if got := GetString(fields, "nothing"); got != "" {
		t.Fatalf("expected empty string for nil, got %q", got)
	}
	if got := GetInt64(fields, "idText"); got != 42 {
		t.Fatalf("unexpected int: %d", got)
	}
	if got := GetString(GetMap(fields, "league"), "name"); got != "Premier League" {
		t.Fatalf("unexpected nested value: %q", got)
	}
	if got := GetSlice(fields, "teams"); len(got) != 2 {
		t.Fatalf("unexpected slice length: %d", len(got))
	}
	if got := FirstNonEmpty("", "  ", " Sky "); got != "Sky" {
		t.Fatalf("unexpected first non-empty: %q", got)
	}
}
