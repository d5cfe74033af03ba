package match

import "strings"

// Raw provider status vocabulary. Providers spell these differently, so
// everything is upper-cased with spaces and dashes folded to underscores
// before comparison.
const (
	RawStatusScheduled = "SCHEDULED"
	RawStatusLive      = "LIVE"
	RawStatusFinished  = "FINISHED"
	RawStatusCancelled = "CANCELLED"
	RawStatusPostponed = "POSTPONED"
)

func NormalizeRawStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return RawStatusScheduled
	}
	status = strings.NewReplacer(" ", "_", "-", "_").Replace(status)
	return status
}

func IsLiveStatus(status string) bool {
	switch NormalizeRawStatus(status) {
	case RawStatusLive, "IN_PLAY", "PAUSED", "HT", "1H", "2H", "ET", "BT", "P", "INPLAY_1ST_HALF", "INPLAY_2ND_HALF", "INPLAY_ET", "INPLAY_PENALTIES", "HALF_TIME", "FIRST_HALF", "SECOND_HALF", "EXTRA_TIME":
		return true
	default:
		return false
	}
}

func IsFinishedStatus(status string) bool {
	switch NormalizeRawStatus(status) {
	case RawStatusFinished, "FT", "AET", "PEN", "FT_PEN", "AWARDED", "MATCH_FINISHED", "AFTER_EXTRA_TIME", "AFTER_PENALTIES":
		return true
	default:
		return false
	}
}

func IsCancelledLikeStatus(status string) bool {
	switch NormalizeRawStatus(status) {
	case RawStatusCancelled, RawStatusPostponed, "ABANDONED", "SUSPENDED", "PST", "CANC", "ABD", "MATCH_POSTPONED", "MATCH_CANCELLED":
		return true
	default:
		return false
	}
}
