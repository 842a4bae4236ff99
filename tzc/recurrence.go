package tzc

import (
	"fmt"
	"time"

	"github.com/zicgo/zic/internal/datemath"
	"github.com/zicgo/zic/internal/unixtime"
	"github.com/zicgo/zic/tzdata"
)

// Recurrence is one rule line expanded into a reusable, year-bounded
// transition pattern: in every year of [From, To], a transition to
// Save occurs at the moment described by Month, Day and Time.
type Recurrence struct {
	Letter string // variable part for the zone's FORMAT template
	Save   time.Duration
	From   tzdata.Year
	To     tzdata.Year
	Month  time.Month
	Day    tzdata.Day
	Time   tzdata.TimeOfDay
}

// Infinite reports whether the recurrence repeats into the indefinite
// future.
func (r Recurrence) Infinite() bool { return r.To == tzdata.MaxYear }

// fromYear and toYear clamp the year range to the searchable window.
func (r Recurrence) fromYear() int {
	if r.From == tzdata.MinYear {
		return searchYearMin
	}
	return int(r.From)
}

func (r Recurrence) toYear() int {
	if r.To == tzdata.MaxYear {
		return searchYearMax
	}
	return int(r.To)
}

// occurrence computes the instant of the recurrence's transition in a
// given year. The rule's local time is resolved into UT using the
// offset its clock mode calls for: the full wall offset, the standard
// offset alone, or nothing.
func (r Recurrence) occurrence(year int, std, prevSave time.Duration) Instant {
	y, m, d := datemath.ResolveDay(year, r.Month, r.Day)
	t := unixtime.FromDateTime(y, int(m), d, 0, 0, 0)
	t += offsetSeconds(r.Time.Duration)
	if r.Time.AddDay {
		t += 24 * 60 * 60
	}
	switch r.Time.Mode {
	case tzdata.WallClock:
		t -= offsetSeconds(std + prevSave)
	case tzdata.StandardClock:
		t -= offsetSeconds(std)
	case tzdata.UniversalClock:
	}
	return Instant(t)
}

// NextAfter returns the earliest transition strictly after t that the
// recurrence produces in some year of its range, given the governing
// standard offset and the savings in effect before the transition.
// The second result is false if the recurrence has expired or never
// fires after t.
func (r Recurrence) NextAfter(t Instant, std, prevSave time.Duration) (Instant, bool) {
	from, to := r.fromYear(), r.toYear()
	ty := t.year()

	// Each year holds at most one occurrence, and a day selector can
	// push it into the neighboring calendar year in either direction
	// ("Jan Sun<=6" may land in December of the year before), so the
	// window spans [ty-1, ty+2]: an occurrence of year ty+2 is always
	// past t even after the largest possible spill backwards. A rule
	// that only starts beyond the window fires first in its start year.
	first := max(from, ty-1)
	last := min(to, ty+2)
	if from > last {
		first, last = from, from
	}
	for y := first; y <= last; y++ {
		if occ := r.occurrence(y, std, prevSave); occ > t {
			return occ, true
		}
	}
	return 0, false
}

// PreviousOrAt returns the latest transition at or before t, or false
// if the recurrence has no occurrence that early.
func (r Recurrence) PreviousOrAt(t Instant, std, prevSave time.Duration) (Instant, bool) {
	from, to := r.fromYear(), r.toYear()
	ty := t.year()

	top := min(to, ty+1)
	// Occurrences shrink with the year, so the first hit from the top
	// is the latest one. Any occurrence in a year two below t's is
	// early enough, so the scan is bounded.
	for y := top; y >= from && y >= top-3; y-- {
		if occ := r.occurrence(y, std, prevSave); occ <= t {
			return occ, true
		}
	}
	return 0, false
}

// expandRuleLine turns one parsed rule line into recurrences. Ordinary
// rules become a single recurrence. Year-type rules ("odd"/"even")
// are expanded eagerly into one single-year recurrence per qualifying
// year, which requires the range to be bounded and plausibly sized.
func expandRuleLine(l tzdata.RuleLine) ([]Recurrence, error) {
	r := Recurrence{
		Letter: l.Letter,
		Save:   l.Save,
		From:   l.From,
		To:     l.To,
		Month:  l.In,
		Day:    l.On,
		Time:   l.At,
	}
	switch l.Type {
	case "-", "":
		return []Recurrence{r}, nil
	case "odd", "even":
	default:
		return nil, fmt.Errorf("%w: year type %q", ErrUnsupportedRule, l.Type)
	}

	if l.From == tzdata.MinYear || l.To == tzdata.MaxYear {
		return nil, fmt.Errorf("%w: unbounded %s-year rule", ErrUnsupportedRule, l.Type)
	}
	const maxTypedSpan = 1000
	if int(l.To)-int(l.From) > maxTypedSpan {
		return nil, fmt.Errorf("%w: %s-year rule spans %d years", ErrUnsupportedRule, l.Type, int(l.To)-int(l.From))
	}

	parity := 0
	if l.Type == "odd" {
		parity = 1
	}
	var out []Recurrence
	for y := l.From; y <= l.To; y++ {
		if (int(y)%2+2)%2 != parity {
			continue
		}
		single := r
		single.From, single.To = y, y
		out = append(out, single)
	}
	return out, nil
}
