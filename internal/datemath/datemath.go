// Package datemath resolves the day selectors of the tzdata format
// (lastSun, Sun>=8, Sun<=25) into concrete calendar dates, including
// the cases where the selection crosses into a neighboring month or
// year.
package datemath

import (
	"fmt"
	"time"

	"github.com/zicgo/zic/internal/unixtime"
	"github.com/zicgo/zic/tzdata"
)

// DaysInMonth returns the number of days in a month.
func DaysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if unixtime.IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	}
	return 31
}

// Weekday returns the day of the week of a civil date.
func Weekday(year int, month time.Month, day int) time.Weekday {
	return time.Weekday(unixtime.Weekday(year, int(month), day))
}

// ResolveDay turns a day selector within a given year and month into a
// concrete date. The result can be in a neighboring month or year for
// the on-or-after and on-or-before forms; "Oct Sun>=31" names the
// first Sunday on or after October 31 even if that Sunday is in
// November.
func ResolveDay(year int, month time.Month, d tzdata.Day) (int, time.Month, int) {
	switch d.Form {
	case tzdata.DayFormNum:
		return year, month, d.Num
	case tzdata.DayFormLast:
		return year, month, lastInMonth(year, month, d.Weekday)
	case tzdata.DayFormAfter:
		return onOrAfter(year, month, d.Num, d.Weekday)
	case tzdata.DayFormBefore:
		return onOrBefore(year, month, d.Num, d.Weekday)
	}
	panic(fmt.Sprintf("invalid day form %v", d.Form))
}

// lastInMonth returns the day of the last occurrence of w in the month.
func lastInMonth(year int, month time.Month, w time.Weekday) int {
	last := DaysInMonth(year, month)
	diff := int(Weekday(year, month, last)-w+7) % 7
	return last - diff
}

// onOrAfter returns the date of the first occurrence of w on or after
// the given day, rolling into the next month or year as needed.
func onOrAfter(year int, month time.Month, day int, w time.Weekday) (int, time.Month, int) {
	diff := int(w-Weekday(year, month, day)+7) % 7
	day += diff
	if n := DaysInMonth(year, month); day > n {
		day -= n
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	return year, month, day
}

// onOrBefore returns the date of the last occurrence of w on or before
// the given day, rolling into the previous month or year as needed.
func onOrBefore(year int, month time.Month, day int, w time.Weekday) (int, time.Month, int) {
	diff := int(Weekday(year, month, day)-w+7) % 7
	day -= diff
	if day < 1 {
		month--
		if month < time.January {
			month = time.December
			year--
		}
		day += DaysInMonth(year, month)
	}
	return year, month, day
}
