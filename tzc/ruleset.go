package tzc

import (
	"time"

	"github.com/zicgo/zic/internal/datemath"
	"github.com/zicgo/zic/internal/unixtime"
	"github.com/zicgo/zic/tzdata"
)

type ruleSetKind int

const (
	// fixedSet applies a constant savings (possibly zero) for the whole
	// segment.
	fixedSet ruleSetKind = iota
	// ruleDrivenSet derives its savings from a named set of recurrences.
	ruleDrivenSet
)

// zoneRuleSet is one zone line with its RULES column resolved against
// the database: either a fixed savings or the expanded recurrences of
// the named rule set.
type zoneRuleSet struct {
	kind   ruleSetKind
	std    time.Duration
	save   time.Duration // fixedSet only
	rules  []Recurrence  // ruleDrivenSet only, declaration order
	format string
	until  tzdata.Until
}

// resolveRuleSet binds a zone line to the database. A RULES name that
// is not in the database is an error; the reference can only be
// checked once every file has been added.
func (db *Database) resolveRuleSet(zone string, l tzdata.ZoneLine) (zoneRuleSet, error) {
	rs := zoneRuleSet{
		std:    l.StdOffset,
		format: l.Format,
		until:  l.Until,
	}
	switch l.Rules.Form {
	case tzdata.RuleRefNone:
		rs.kind = fixedSet
	case tzdata.RuleRefSave:
		rs.kind = fixedSet
		rs.save = l.Rules.Save
	case tzdata.RuleRefName:
		rules, ok := db.rules[l.Rules.Name]
		if !ok {
			return rs, &UnknownRuleReferenceError{Zone: zone, Name: l.Rules.Name}
		}
		rs.kind = ruleDrivenSet
		rs.rules = rules
	}
	return rs, nil
}

// untilInstant resolves the segment's UNTIL column into a universal
// instant, given the savings in effect as the segment ends. A segment
// without UNTIL extends to the end of time.
func (rs zoneRuleSet) untilInstant(save time.Duration) Instant {
	u := rs.until
	if !u.Defined {
		return MaxInstant
	}
	y, m, d := datemath.ResolveDay(int(u.Year), u.Month, u.Day)
	t := unixtime.FromDateTime(y, int(m), d, 0, 0, 0)
	t += offsetSeconds(u.Time.Duration)
	if u.Time.AddDay {
		t += 24 * 60 * 60
	}
	switch u.Time.Mode {
	case tzdata.WallClock:
		t -= offsetSeconds(rs.std + save)
	case tzdata.StandardClock:
		t -= offsetSeconds(rs.std)
	case tzdata.UniversalClock:
	}
	return Instant(t)
}
