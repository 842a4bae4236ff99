package tzdata

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// monthNames are matched case-sensitively: the historical data spells
// months as "Jan" or occasionally in full, never in lower case.
var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

func parseMonth(s string) (time.Month, error) {
	if len(s) < 3 {
		return 0, invalidf("month %q: too short", s)
	}
	for i, name := range monthNames {
		if strings.HasPrefix(name, s) {
			return time.Month(i + 1), nil
		}
	}
	return 0, invalidf("month %q", s)
}

func parseWeekday(s string) (time.Weekday, error) {
	l := strings.ToLower(s)
	days := []struct {
		long string
		min  string
		day  time.Weekday
	}{
		{"sunday", "su", time.Sunday},
		{"monday", "m", time.Monday},
		{"tuesday", "tu", time.Tuesday},
		{"wednesday", "w", time.Wednesday},
		{"thursday", "th", time.Thursday},
		{"friday", "f", time.Friday},
		{"saturday", "sa", time.Saturday},
	}
	for _, d := range days {
		if isAbbrev(l, d.long, d.min) {
			return d.day, nil
		}
	}
	return 0, invalidf("weekday %q", s)
}

// isAbbrev reports whether s is an abbreviation of long that is at
// least as long as min.
func isAbbrev(s, long, min string) bool {
	return strings.HasPrefix(s, min) && strings.HasPrefix(long, s)
}

// parseYear parses a decimal year or the case-insensitive sentinels
// for the indefinite past and future. The word "only" repeats from.
func parseYear(s string, from Year) (Year, error) {
	l := strings.ToLower(s)
	if isAbbrev(l, "minimum", "mi") {
		return MinYear, nil
	}
	if isAbbrev(l, "maximum", "ma") {
		return MaxYear, nil
	}
	if isAbbrev(l, "only", "o") {
		return from, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, invalidf("year %q", s)
	}
	return Year(n), nil
}

// ParseOffset parses an offset or duration of the form
// [+-]H[:MM[:SS[.frac]]]. A bare "-" is equivalent to zero, matching
// the AT column idiom. Fractions are kept at millisecond precision.
func ParseOffset(s string) (time.Duration, error) {
	if s == "-" {
		return 0, nil
	}
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	if s == "" {
		return 0, invalidf("empty offset")
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, invalidf("offset has too many components")
	}
	var h, m, sec, ms int
	var err error
	if h, err = strconv.Atoi(parts[0]); err != nil || h < 0 {
		return 0, invalidf("offset hours %q", parts[0])
	}
	if len(parts) > 1 {
		if m, err = strconv.Atoi(parts[1]); err != nil || m < 0 || m > 59 {
			return 0, invalidf("offset minutes %q", parts[1])
		}
	}
	if len(parts) > 2 {
		secStr, frac, hasFrac := strings.Cut(parts[2], ".")
		if sec, err = strconv.Atoi(secStr); err != nil || sec < 0 || sec > 59 {
			return 0, invalidf("offset seconds %q", parts[2])
		}
		if hasFrac {
			// Pad or truncate the fraction to milliseconds.
			if len(frac) > 3 {
				frac = frac[:3]
			}
			for len(frac) < 3 {
				frac += "0"
			}
			if ms, err = strconv.Atoi(frac); err != nil {
				return 0, invalidf("offset fraction %q", parts[2])
			}
		}
	}

	d := time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec)*time.Second +
		time.Duration(ms)*time.Millisecond
	if neg {
		d = -d
	}
	return d, nil
}

// ParseOptionalOffset is ParseOffset with the RULES column convention:
// a bare "-" means no offset at all rather than zero.
func ParseOptionalOffset(s string) (time.Duration, bool, error) {
	if s == "-" {
		return 0, false, nil
	}
	d, err := ParseOffset(s)
	if err != nil {
		return 0, false, err
	}
	return d, true, nil
}

// FormatOffset renders an offset in canonical form: a minus sign for
// negative offsets, hours without padding, and minute, second and
// fraction components only when needed. FormatOffset(ParseOffset(s))
// is the identity on canonical strings.
func FormatOffset(d time.Duration) string {
	if d == 0 {
		return "0"
	}
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	ms := d / time.Millisecond

	fmt.Fprintf(&b, "%d:%02d", h, m)
	if s > 0 || ms > 0 {
		fmt.Fprintf(&b, ":%02d", s)
	}
	if ms > 0 {
		b.WriteString(strings.TrimRight(fmt.Sprintf(".%03d", ms), "0"))
	}
	return b.String()
}

// parseDay parses the ON column of a rule line: a bare day number,
// "lastSun", "Sun>=8" or "Sun<=25".
func parseDay(s string) (Day, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 {
			return Day{}, invalidf("day of month %q", s)
		}
		return NewDayNum(n), nil
	}
	if rest, ok := strings.CutPrefix(s, "last"); ok {
		w, err := parseWeekday(rest)
		if err != nil {
			return Day{}, err
		}
		return NewDayLast(w), nil
	}
	for _, op := range []struct {
		sep  string
		form DayForm
	}{{"<=", DayFormBefore}, {">=", DayFormAfter}} {
		left, right, ok := strings.Cut(s, op.sep)
		if !ok {
			continue
		}
		w, err := parseWeekday(left)
		if err != nil {
			return Day{}, fmt.Errorf("left of %q: %w", op.sep, err)
		}
		n, err := strconv.Atoi(right)
		if err != nil {
			return Day{}, invalidf("right of %q: %q", op.sep, right)
		}
		return Day{Form: op.form, Num: n, Weekday: w}, nil
	}
	return Day{}, invalidf("day %q", s)
}

// parseAt parses the AT column of a rule line: a time of day with an
// optional single-letter clock suffix. "s" refers to standard time,
// "u", "g" and "z" to universal time; anything else, or no suffix,
// means wall clock. The spelling 24:00 becomes midnight of the
// following day.
func parseAt(s string) (TimeOfDay, error) {
	if s == "-" {
		return TimeOfDay{}, nil
	}
	mode := WallClock
	if len(s) > 0 {
		switch c := s[len(s)-1]; {
		case c >= '0' && c <= '9':
			// no suffix
		default:
			switch c {
			case 'w', 'W':
			case 's', 'S':
				mode = StandardClock
			case 'u', 'U', 'g', 'G', 'z', 'Z':
				mode = UniversalClock
			default:
				return TimeOfDay{}, invalidf("clock suffix %q", string(c))
			}
			s = s[:len(s)-1]
		}
	}
	d, err := ParseOffset(s)
	if err != nil {
		return TimeOfDay{}, err
	}
	t := TimeOfDay{Duration: d, Mode: mode}
	if d == 24*time.Hour {
		t.Duration = 0
		t.AddDay = true
	}
	return t, nil
}

// parseSave parses the SAVE column of a rule line: a duration with an
// optional "s" or "d" suffix. Only the amount matters for offset
// arithmetic, so the suffix is validated and discarded.
func parseSave(s string) (time.Duration, error) {
	if len(s) > 0 {
		switch s[len(s)-1] {
		case 's', 'd':
			s = s[:len(s)-1]
		}
	}
	return ParseOffset(s)
}
