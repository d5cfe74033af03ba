package match

import (
	"strings"
	"time"
)

const keyDayLayout = "2006-01-02"

// MergeKey identifies one real-world match across sources. Day is the UTC
// calendar date of kickoff; matches kicking off near UTC midnight can land on
// a different day than their local date.
type MergeKey struct {
	Day  string
	Home string
	Away string
}

func DeriveKey(kickoffUTC time.Time, homeKey, awayKey string) MergeKey {
	return MergeKey{
		Day:  kickoffUTC.UTC().Format(keyDayLayout),
		Home: homeKey,
		Away: awayKey,
	}
}

func (k MergeKey) String() string {
	return k.Day + "|" + k.Home + "|" + k.Away
}

func (k MergeKey) IsZero() bool {
	return k.Day == "" && k.Home == "" && k.Away == ""
}

// ParseMergeKey is the inverse of String.
func ParseMergeKey(raw string) (MergeKey, bool) {
	parts := strings.SplitN(raw, "|", 3)
	if len(parts) != 3 {
		return MergeKey{}, false
	}
	return MergeKey{Day: parts[0], Home: parts[1], Away: parts[2]}, true
}

// Less orders keys by their string form.
func (k MergeKey) Less(other MergeKey) bool {
	if k.Day != other.Day {
		return k.Day < other.Day
	}
	if k.Home != other.Home {
		return k.Home < other.Home
	}
	return k.Away < other.Away
}
