package match

import (
	"testing"
	"time"
)

func TestTeamNormalizer_Normalize(t *testing.T) {
	n := NewTeamNormalizer(map[string]string{"The Red Devils": "Manchester United"})

	cases := map[string]string{
		"Manchester United":         "manchester united",
		"  Manchester   United FC ": "manchester united",
		"Man United":                "manchester united",
		"Man Utd":                   "manchester united",
		"MAN. UTD.":                 "manchester united",
		"The Red Devils":            "manchester united",
		"Chelsea FC":                "chelsea",
		"Chelsea":                   "chelsea",
		"AFC Bournemouth":           "bournemouth",
		"A.F.C. Bournemouth":        "bournemouth",
		"Brighton & Hove Albion":    "brighton and hove albion",
		"Brighton":                  "brighton and hove albion",
		"Nott'm Forest":             "nottingham forest",
		"Atlético Madrid":           "atletico madrid",
		"1. FC Köln":                "1 fc koln",
		"FC":                        "fc",
		"":                          "",
	}

	for in, want := range cases {
		if got := n.Normalize(in); got != want {
			t.Fatalf("Normalize(%q)=%q want %q", in, got, want)
		}
	}
}

func TestTeamNormalizer_Same(t *testing.T) {
	n := NewTeamNormalizer(nil)

	if !n.Same("Man United", "Manchester United FC") {
		t.Fatalf("expected aliases to match")
	}
	if n.Same("Manchester City", "Manchester United") {
		t.Fatalf("expected different clubs not to match")
	}
	if n.Same("", "") {
		t.Fatalf("expected empty names not to match")
	}
}

func TestDeriveKey(t *testing.T) {
	kickoff := time.Date(2025, time.September, 20, 23, 30, 0, 0, time.FixedZone("", -2*3600))

	key := DeriveKey(kickoff, "manchester united", "chelsea")
	if key.Day != "2025-09-21" {
		t.Fatalf("expected UTC day, got %s", key.Day)
	}
	if key.String() != "2025-09-21|manchester united|chelsea" {
		t.Fatalf("unexpected key string: %s", key.String())
	}

	parsed, ok := ParseMergeKey(key.String())
	if !ok || parsed != key {
		t.Fatalf("unexpected parsed key: %+v ok=%v", parsed, ok)
	}
	if _, ok := ParseMergeKey("2025-09-21|chelsea"); ok {
		t.Fatalf("expected malformed key to fail")
	}
}

func TestDeriveOutcome(t *testing.T) {
	cases := []struct {
		name    string
		subject string
		score   *Score
		want    Outcome
	}{
		{name: "home win", subject: "manchester united", score: &Score{Home: 2, Away: 1}, want: OutcomeWin},
		{name: "away loss", subject: "chelsea", score: &Score{Home: 2, Away: 1}, want: OutcomeLoss},
		{name: "draw", subject: "chelsea", score: &Score{Home: 0, Away: 0}, want: OutcomeDraw},
		{name: "away win", subject: "chelsea", score: &Score{Home: 0, Away: 3}, want: OutcomeWin},
		{name: "no score", subject: "manchester united", score: nil, want: ""},
		{name: "subject not playing", subject: "arsenal", score: &Score{Home: 2, Away: 1}, want: ""},
		{name: "no subject", subject: "", score: &Score{Home: 2, Away: 1}, want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveOutcome(tc.subject, "manchester united", "chelsea", tc.score); got != tc.want {
				t.Fatalf("unexpected outcome: got=%q want=%q", got, tc.want)
			}
		})
	}
}

func TestOpponent(t *testing.T) {
	m := Match{HomeTeam: "Manchester United", AwayTeam: "Chelsea", HomeKey: "manchester united", AwayKey: "chelsea"}

	if got := Opponent("manchester united", m); len(got) != 1 || got[0] != "Chelsea" {
		t.Fatalf("unexpected opponent: %v", got)
	}
	if got := Opponent("chelsea", m); len(got) != 1 || got[0] != "Manchester United" {
		t.Fatalf("unexpected opponent: %v", got)
	}
	if got := Opponent("arsenal", m); len(got) != 2 {
		t.Fatalf("expected both sides, got %v", got)
	}
	if Involves("arsenal", m) || !Involves("chelsea", m) {
		t.Fatalf("unexpected Involves result")
	}
}

func TestStatusVocabulary(t *testing.T) {
	if !IsFinishedStatus("Match Finished") || !IsFinishedStatus("ft") || !IsFinishedStatus("AWARDED") {
		t.Fatalf("expected finished statuses")
	}
	if !IsLiveStatus("IN_PLAY") || !IsLiveStatus("2H") || !IsLiveStatus("paused") {
		t.Fatalf("expected live statuses")
	}
	if !IsCancelledLikeStatus("Match Postponed") || !IsCancelledLikeStatus("PST") {
		t.Fatalf("expected cancelled statuses")
	}
	if IsLiveStatus("") || IsFinishedStatus("") {
		t.Fatalf("empty status must be scheduled")
	}
	if NormalizeRawStatus("not started") != "NOT_STARTED" {
		t.Fatalf("unexpected normalized status: %s", NormalizeRawStatus("not started"))
	}
}
