package match

// DeriveOutcome returns the result from the subject team's side. It is empty
// when there is no score or the subject plays neither side.
func DeriveOutcome(subjectKey, homeKey, awayKey string, score *Score) Outcome {
	if score == nil || subjectKey == "" {
		return ""
	}

	var own, other int
	switch subjectKey {
	case homeKey:
		own, other = score.Home, score.Away
	case awayKey:
		own, other = score.Away, score.Home
	default:
		return ""
	}

	switch {
	case own > other:
		return OutcomeWin
	case own == other:
		return OutcomeDraw
	default:
		return OutcomeLoss
	}
}

// Opponent returns the display name of the side that is not the subject.
// When the subject plays neither side both names are returned.
func Opponent(subjectKey string, m Match) []string {
	switch subjectKey {
	case m.HomeKey:
		return []string{m.AwayTeam}
	case m.AwayKey:
		return []string{m.HomeTeam}
	default:
		return []string{m.HomeTeam, m.AwayTeam}
	}
}

// Involves reports whether the subject plays either side.
func Involves(subjectKey string, m Match) bool {
	return subjectKey != "" && (subjectKey == m.HomeKey || subjectKey == m.AwayKey)
}
