package tzc

import (
	"math"
	"time"

	"github.com/zicgo/zic/internal/unixtime"
)

// Instant is a point on the absolute (UT) timeline in Unix seconds.
// MinInstant and MaxInstant are the open bounds "before the beginning
// of time" and "after the end of time".
type Instant int64

const (
	MinInstant Instant = math.MinInt64
	MaxInstant Instant = math.MaxInt64
)

// searchYearMin and searchYearMax bound the years the recurrence
// search will ever resolve a calendar date in. The database never
// names years anywhere near these, they only keep sentinel arithmetic
// out of trouble.
const (
	searchYearMin = -9999
	searchYearMax = 9999
)

func (i Instant) String() string {
	switch i {
	case MinInstant:
		return "-inf"
	case MaxInstant:
		return "+inf"
	}
	return time.Unix(int64(i), 0).UTC().Format("2006-01-02T15:04:05Z")
}

// year returns the civil year the instant falls in, pushing the
// sentinels just outside the searchable range.
func (i Instant) year() int {
	switch i {
	case MinInstant:
		return searchYearMin - 1
	case MaxInstant:
		return searchYearMax + 1
	}
	return unixtime.Year(int64(i))
}

// addSeconds shifts an instant, leaving the sentinels in place.
func (i Instant) addSeconds(s int64) Instant {
	if i == MinInstant || i == MaxInstant {
		return i
	}
	return i + Instant(s)
}

// offsetSeconds rounds an offset to whole seconds. Sub-second offsets
// occur in a handful of pre-standard-time LMT entries; they are kept
// through parsing and rounded here, where instants are derived.
func offsetSeconds(d time.Duration) int64 {
	if d < 0 {
		return -offsetSeconds(-d)
	}
	return int64((d + time.Second/2) / time.Second)
}
