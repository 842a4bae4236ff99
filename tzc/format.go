package tzc

import (
	"fmt"
	"strings"
	"time"
)

// expandFormat renders a zone's FORMAT column into the abbreviation of
// one interval. Three spellings exist in the data: a "std/dst" pair
// selected by whether savings are in effect, a template with %s filled
// from the rule's LETTER column, and %z for a numeric +-hh[mm[ss]]
// offset. Plain strings pass through.
func expandFormat(format, letter string, std, save time.Duration) string {
	if i := strings.IndexByte(format, '/'); i >= 0 {
		if save == 0 {
			return format[:i]
		}
		return format[i+1:]
	}
	if strings.Contains(format, "%s") {
		return strings.Replace(format, "%s", letter, 1)
	}
	if strings.Contains(format, "%z") {
		return strings.Replace(format, "%z", numericAbbrev(std+save), 1)
	}
	return format
}

// numericAbbrev formats an offset as +-hh, +-hhmm or +-hhss, using the
// shortest form that loses nothing.
func numericAbbrev(off time.Duration) string {
	s := offsetSeconds(off)
	sign := "+"
	if s < 0 {
		sign = "-"
		s = -s
	}
	h, m, sec := s/3600, s/60%60, s%60
	switch {
	case sec != 0:
		return fmt.Sprintf("%s%02d%02d%02d", sign, h, m, sec)
	case m != 0:
		return fmt.Sprintf("%s%02d%02d", sign, h, m)
	}
	return fmt.Sprintf("%s%02d", sign, h)
}
