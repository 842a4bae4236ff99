package tzdata

import (
	"math"
	"strconv"
	"time"
)

// Year is a year in the proleptic Gregorian calendar, with year 0
// preceding year 1.
type Year int

const (
	// MinYear means the indefinite past.
	MinYear Year = math.MinInt
	// MaxYear means the indefinite future.
	MaxYear Year = math.MaxInt
)

func (y Year) String() string {
	switch y {
	case MinYear:
		return "<indefinite past>"
	case MaxYear:
		return "<indefinite future>"
	}
	return strconv.Itoa(int(y))
}

// ClockMode identifies the clock a rule or zone time refers to. It
// determines which offset must be added to a local time to resolve it
// into a universal instant.
type ClockMode int

const (
	// WallClock is local time including any daylight saving.
	WallClock ClockMode = iota
	// StandardClock is local standard time without daylight saving.
	StandardClock
	// UniversalClock is UT.
	UniversalClock
)

func (m ClockMode) String() string {
	switch m {
	case WallClock:
		return "wall"
	case StandardClock:
		return "standard"
	case UniversalClock:
		return "universal"
	}
	return "<undefined>"
}

// DayForm is the shape of the ON column of a rule line or the day part
// of a zone line's UNTIL column.
type DayForm int

const (
	// DayFormNum selects a fixed day of the month, any weekday.
	DayFormNum DayForm = iota
	// DayFormLast selects the last occurrence of a weekday in the month.
	DayFormLast
	// DayFormAfter selects the first occurrence of a weekday on or
	// after a day of the month, possibly in the following month.
	DayFormAfter
	// DayFormBefore selects the last occurrence of a weekday on or
	// before a day of the month, possibly in the preceding month.
	DayFormBefore
)

func (f DayForm) String() string {
	switch f {
	case DayFormNum:
		return "DayNum"
	case DayFormLast:
		return "Last"
	case DayFormAfter:
		return "After"
	case DayFormBefore:
		return "Before"
	}
	return "<undefined>"
}

// Day selects a day within a month. Weekday is meaningful only for the
// forms that filter by weekday.
type Day struct {
	Form    DayForm
	Num     int
	Weekday time.Weekday
}

// NewDayNum returns a Day selecting a fixed day of the month.
func NewDayNum(n int) Day { return Day{Form: DayFormNum, Num: n} }

// NewDayLast returns a Day selecting the last weekday w of the month.
func NewDayLast(w time.Weekday) Day { return Day{Form: DayFormLast, Weekday: w} }

// NewDayAfter returns a Day selecting the first weekday w on or after day n.
func NewDayAfter(n int, w time.Weekday) Day { return Day{Form: DayFormAfter, Num: n, Weekday: w} }

// NewDayBefore returns a Day selecting the last weekday w on or before day n.
func NewDayBefore(n int, w time.Weekday) Day { return Day{Form: DayFormBefore, Num: n, Weekday: w} }

// TimeOfDay is a time relative to 00:00, the start of a calendar day,
// together with the clock it refers to. The spelling 24:00 is
// normalized to midnight with AddDay set rather than represented as
// hour twenty-four.
type TimeOfDay struct {
	Duration time.Duration
	AddDay   bool
	Mode     ClockMode
}

// NewWallClock returns a wall-clock TimeOfDay.
func NewWallClock(d time.Duration) TimeOfDay { return TimeOfDay{Duration: d} }
