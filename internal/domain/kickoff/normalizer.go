package kickoff

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrTimeParse is returned when no admitted timestamp shape can be parsed.
var ErrTimeParse = errors.New("time parse error")

type Precision string

const (
	// PrecisionExact means the provider supplied a time of day.
	PrecisionExact Precision = "exact"
	// PrecisionDateOnly means the time of day is the configured nominal kickoff.
	PrecisionDateOnly Precision = "date_only"
)

const dateLayout = "2006-01-02"

var offsetLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05-0700",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02T15:04:05-07",
	"2006-01-02 15:04:05-07",
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

var clockLayouts = []string{
	"15:04:05",
	"15:04",
}

var clockOffsetLayouts = []string{
	"15:04:05Z07:00",
	"15:04Z07:00",
	"15:04:05-0700",
	"15:04:05-07",
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTimeOfDay reads "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range clockLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
		}
	}
	return TimeOfDay{}, errors.Wrapf(ErrTimeParse, "invalid time of day %q", raw)
}

// Config carries the reference zone and the documented default kickoff used
// when a provider only knows the match date.
type Config struct {
	Location       *time.Location
	DefaultKickoff TimeOfDay
}

// Input is one provider timestamp in any admitted shape.
//
// DateTime holds a combined value with an embedded offset. Date and Time hold
// separate calendar and wall-clock parts; Location overrides the reference
// zone for them when the provider documents its own zone (often UTC).
type Input struct {
	DateTime string
	Date     string
	Time     string
	Location *time.Location
}

func (in Input) IsZero() bool {
	return strings.TrimSpace(in.DateTime) == "" && strings.TrimSpace(in.Date) == ""
}

type Result struct {
	Instant   time.Time
	Precision Precision
}

type Normalizer struct {
	location       *time.Location
	defaultKickoff TimeOfDay
}

func NewNormalizer(cfg Config) *Normalizer {
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}
	return &Normalizer{
		location:       location,
		defaultKickoff: cfg.DefaultKickoff,
	}
}

func (n *Normalizer) Location() *time.Location {
	return n.location
}

// Normalize converts a provider timestamp into a UTC instant.
func (n *Normalizer) Normalize(in Input) (Result, error) {
	combined := strings.TrimSpace(in.DateTime)
	date := strings.TrimSpace(in.Date)
	clock := strings.TrimSpace(in.Time)

	if combined != "" {
		result, err := n.parseCombined(combined, in.Location)
		if err == nil {
			return result, nil
		}
		if date == "" {
			return Result{}, err
		}
	}

	if date == "" {
		return Result{}, errors.Wrap(ErrTimeParse, "no date or datetime supplied")
	}
	return n.parseParts(date, clock, in.Location)
}

// NormalizeInstant is the identity on already-normalized instants.
func (n *Normalizer) NormalizeInstant(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func (n *Normalizer) parseCombined(value string, location *time.Location) (Result, error) {
	for _, layout := range offsetLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return Result{Instant: n.NormalizeInstant(parsed), Precision: PrecisionExact}, nil
		}
	}

	for _, layout := range naiveLayouts {
		if len(value) != len(layout) {
			continue
		}
		if _, err := time.Parse(layout, value); err == nil {
			return n.parseParts(value[:len(dateLayout)], value[len(dateLayout)+1:], location)
		}
	}

	return Result{}, errors.Wrapf(ErrTimeParse, "unparseable datetime %q", value)
}

func (n *Normalizer) parseParts(date, clock string, location *time.Location) (Result, error) {
	day, err := time.Parse(dateLayout, firstDateToken(date))
	if err != nil {
		return Result{}, errors.Wrapf(ErrTimeParse, "unparseable date %q", date)
	}

	if location == nil {
		location = n.location
	}

	if isPlaceholderClock(clock) {
		local := time.Date(day.Year(), day.Month(), day.Day(), n.defaultKickoff.Hour, n.defaultKickoff.Minute, 0, 0, n.location)
		return Result{Instant: n.NormalizeInstant(local), Precision: PrecisionDateOnly}, nil
	}

	for _, layout := range clockOffsetLayouts {
		parsed, err := time.Parse(layout, clock)
		if err != nil {
			continue
		}
		_, offset := parsed.Zone()
		zone := time.FixedZone("", offset)
		instant := time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), parsed.Second(), 0, zone)
		return Result{Instant: n.NormalizeInstant(instant), Precision: PrecisionExact}, nil
	}

	for _, layout := range clockLayouts {
		parsed, err := time.Parse(layout, clock)
		if err != nil {
			continue
		}
		local := time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), parsed.Second(), 0, location)
		return Result{Instant: n.NormalizeInstant(local), Precision: PrecisionExact}, nil
	}

	return Result{}, errors.Wrapf(ErrTimeParse, "unparseable time %q", clock)
}

func firstDateToken(raw string) string {
	if len(raw) > len(dateLayout) && (raw[len(dateLayout)] == 'T' || raw[len(dateLayout)] == ' ') {
		return raw[:len(dateLayout)]
	}
	return raw
}

func isPlaceholderClock(raw string) bool {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", "TBD", "TBA", "TBC", "NULL":
		return true
	default:
		return false
	}
}

// Season returns the "YYYY-YYYY" season label for an instant; seasons roll
// over in July.
func Season(now time.Time) string {
	start := now.Year()
	if now.Month() < time.July {
		start--
	}
	return strconv.Itoa(start) + "-" + strconv.Itoa(start+1)
}
