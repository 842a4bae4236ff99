package tzif

import (
	"fmt"
	"strings"
	"time"

	"github.com/zicgo/zic/tzc"
	"github.com/zicgo/zic/tzdata"
)

// TZStringFor renders a compiled timeline's steady state as a POSIX TZ
// string for the TZif footer. Zones that end in a repeating tail get
// the rule form, zones whose final interval is plain standard time get
// the constant form, and anything the TZ grammar cannot express
// yields "".
func TZStringFor(tl tzc.Timeline) string {
	if tl.Tail != nil {
		return tailTZString(tl.Tail)
	}
	if n := len(tl.Intervals); n > 0 {
		last := tl.Intervals[n-1]
		if last.End == tzc.MaxInstant && last.Save == 0 {
			return constantTZString(last.Name, last.Std)
		}
	}
	return ""
}

func constantTZString(name string, std time.Duration) string {
	abbr, ok := tzAbbrev(name)
	if !ok {
		return ""
	}
	return abbr + tzOffset(std)
}

func tailTZString(tail *tzc.TailZone) string {
	stdAbbr, ok := tzAbbrev(tail.EndName)
	if !ok {
		return ""
	}
	dstAbbr, ok := tzAbbrev(tail.StartName)
	if !ok {
		return ""
	}
	start, ok := tzRule(tail.Start, tail.Std, tail.End.Save)
	if !ok {
		return ""
	}
	end, ok := tzRule(tail.End, tail.Std, tail.Start.Save)
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(stdAbbr)
	b.WriteString(tzOffset(tail.Std))
	b.WriteString(dstAbbr)
	// The DST offset is implied when it is the customary hour ahead.
	if tail.Start.Save != time.Hour {
		b.WriteString(tzOffset(tail.Std + tail.Start.Save))
	}
	b.WriteByte(',')
	b.WriteString(start)
	b.WriteByte(',')
	b.WriteString(end)
	return b.String()
}

// tzAbbrev quotes an abbreviation for the TZ grammar. Purely
// alphabetic names stand alone; names with digits or signs need angle
// brackets; anything else is not representable.
func tzAbbrev(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	alpha := true
	for _, c := range name {
		switch {
		case c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9' || c == '+' || c == '-':
			alpha = false
		default:
			return "", false
		}
	}
	if alpha {
		return name, true
	}
	return "<" + name + ">", true
}

// tzOffset renders an offset in TZ notation, which counts hours west
// of Greenwich: the sign is inverted relative to the usual ISO form.
func tzOffset(d time.Duration) string {
	s := int64(d / time.Second)
	sign := ""
	if s > 0 {
		sign = "-"
	}
	if s < 0 {
		s = -s
	}
	h, m, sec := s/3600, s/60%60, s%60
	switch {
	case sec != 0:
		return fmt.Sprintf("%s%d:%02d:%02d", sign, h, m, sec)
	case m != 0:
		return fmt.Sprintf("%s%d:%02d", sign, h, m)
	}
	return fmt.Sprintf("%s%d", sign, h)
}

// tzRule renders one recurrence as the date part of a TZ rule,
// preferring the M form. prevSave is the savings in effect before the
// transition, needed to express the transition time on the wall clock
// as the grammar demands.
func tzRule(r tzc.Recurrence, std, prevSave time.Duration) (string, bool) {
	var date string
	switch r.Day.Form {
	case tzdata.DayFormLast:
		date = fmt.Sprintf("M%d.5.%d", r.Month, r.Day.Weekday)
	case tzdata.DayFormAfter:
		// Www>=n is an M rule only when n pins a week boundary.
		if (r.Day.Num-1)%7 != 0 {
			return "", false
		}
		date = fmt.Sprintf("M%d.%d.%d", r.Month, (r.Day.Num-1)/7+1, r.Day.Weekday)
	case tzdata.DayFormNum:
		doy, ok := julianDay(r.Month, r.Day.Num)
		if !ok {
			return "", false
		}
		date = fmt.Sprintf("J%d", doy)
	default:
		return "", false
	}

	at := r.Time.Duration
	if r.Time.AddDay {
		at += 24 * time.Hour
	}
	switch r.Time.Mode {
	case tzdata.StandardClock:
		at += prevSave
	case tzdata.UniversalClock:
		at += std + prevSave
	}
	if at == 2*time.Hour {
		return date, true // the grammar's default
	}
	return date + "/" + tzTime(at), true
}

// julianDay returns the POSIX Jn day number, which never counts
// February 29. A selector naming February 29 itself cannot be
// expressed.
func julianDay(month time.Month, day int) (int, bool) {
	if month == time.February && day == 29 {
		return 0, false
	}
	days := [12]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}
	return days[month-1] + day, true
}

// tzTime renders a transition time of day. Unlike offsets it is not
// sign-inverted, and it may exceed 24 hours.
func tzTime(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	s := int64(d / time.Second)
	h, m, sec := s/3600, s/60%60, s%60
	switch {
	case sec != 0:
		return fmt.Sprintf("%s%d:%02d:%02d", sign, h, m, sec)
	case m != 0:
		return fmt.Sprintf("%s%d:%02d", sign, h, m)
	}
	return fmt.Sprintf("%s%d", sign, h)
}
