// Package unixtime converts between proleptic-Gregorian civil dates
// and Unix timestamps without going through time.Location. Depending
// on time.Location would be circular for code whose job is to produce
// the data time.Location is built from.
package unixtime

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour

	daysPer400Years = 365*400 + 97
)

var daysBeforeMonth = [12]int64{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// FromDateTime converts a civil date and time to Unix seconds. Leap
// seconds are ignored, as everywhere in zone compilation.
func FromDateTime(year int, month int, day int, hour int, minute int, second int) int64 {
	d := daysFromCivil(year, month, day)
	return d*secondsPerDay +
		int64(hour)*secondsPerHour +
		int64(minute)*secondsPerMinute +
		int64(second)
}

// ToDate converts Unix seconds to the civil date it falls on.
func ToDate(unix int64) (year int, month int, day int) {
	return civilFromDays(floorDiv(unix, secondsPerDay))
}

// Year returns the civil year a Unix timestamp falls in.
func Year(unix int64) int {
	y, _, _ := ToDate(unix)
	return y
}

// daysFromCivil returns the number of days from 1970-01-01 to the
// given date, using 400-year Gregorian cycles. Negative for earlier
// dates.
func daysFromCivil(year, month, day int) int64 {
	y := int64(year) - 1970

	// Whole 400-year cycles first so the remainder stays small and
	// non-negative regardless of sign.
	cycles := floorDiv(y, 400)
	y -= cycles * 400
	d := cycles * daysPer400Years

	for i := int64(0); i < y; i++ {
		d += 365
		if IsLeapYear(1970 + int(cycles*400+i)) {
			d++
		}
	}
	d += daysBeforeMonth[month-1]
	if month > 2 && IsLeapYear(year) {
		d++
	}
	return d + int64(day) - 1
}

// civilFromDays is the inverse of daysFromCivil.
func civilFromDays(days int64) (year int, month int, day int) {
	// Shift the epoch to 0000-03-01 so leap days land at the end of
	// the cycle year.
	z := days + 719468
	era := floorDiv(z, daysPer400Years)
	doe := z - era*daysPer400Years                                   // [0, 146096]
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365           // [0, 399]
	doy := doe - (365*yoe + yoe/4 - yoe/100)                         // [0, 365]
	mp := (5*doy + 2) / 153                                          // [0, 11]
	d := doy - (153*mp+2)/5 + 1                                      // [1, 31]
	m := mp + 3
	if mp >= 10 {
		m = mp - 9
	}
	y := yoe + era*400
	if m <= 2 {
		y++
	}
	return int(y), int(m), int(d)
}

// Weekday returns the day of the week of a civil date, with 0 being
// Sunday, matching time.Weekday numbering.
func Weekday(year, month, day int) int {
	d := daysFromCivil(year, month, day)
	// 1970-01-01 was a Thursday.
	return int(floorMod(d+4, 7))
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
