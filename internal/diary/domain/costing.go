package domain

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// ErrInvalidClock rejects time values not in 24h "HH:MM" form.
var ErrInvalidClock = errors.New("time must be in HH:MM 24-hour format")

// ParseClock converts an "HH:MM" string to minutes since midnight.
func ParseClock(v string) (int, error) {
	m := clockPattern.FindStringSubmatch(v)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, v)
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	return h*60 + mm, nil
}

// CalculateHours returns worked hours between start and finish minus the
// break. A finish earlier than the start wraps past midnight (night shift),
// so 22:00 to 06:00 is eight hours. Oversized breaks clamp to zero rather
// than going negative.
func CalculateHours(start, finish string, breakHours float64) (float64, error) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	f, err := ParseClock(finish)
	if err != nil {
		return 0, err
	}
	delta := f - s
	if delta < 0 {
		delta += 24 * 60
	}
	hours := float64(delta)/60 - breakHours
	if hours < 0 {
		hours = 0
	}
	return hours, nil
}

// CalculateCostCents prices hours at a frozen per-hour rate. Rounding
// happens here and nowhere else; downstream aggregation sums these stored
// values without re-rounding.
func CalculateCostCents(hours float64, rateCents int64) int64 {
	return int64(math.Round(hours * float64(rateCents)))
}
