package tzc

import (
	"fmt"
	"runtime"
	"time"
)

// ZoneTransition is a moment at which a zone's observed offset or
// abbreviation changes, together with the state that applies from that
// moment on.
type ZoneTransition struct {
	At   Instant
	Name string
	Std  time.Duration
	Save time.Duration
}

// WallOffset returns the total offset from UT observed after the
// transition.
func (t ZoneTransition) WallOffset() time.Duration { return t.Std + t.Save }

// isTransitionFrom reports whether t is an observable change of state
// after prev. A candidate at the same instant, or one that changes
// nothing a clock or a calendar would show, is not a transition.
func (t ZoneTransition) isTransitionFrom(prev ZoneTransition) bool {
	if t.At <= prev.At {
		return false
	}
	return t.Name != prev.Name || t.Std != prev.Std || t.Save != prev.Save
}

// ZoneInterval is a half-open span [Start, End) during which a zone's
// name and offsets are constant. The final interval of a timeline has
// End == MaxInstant.
type ZoneInterval struct {
	Name  string
	Start Instant
	End   Instant
	Std   time.Duration
	Save  time.Duration
}

// WallOffset returns the total offset from UT observed in the interval.
func (iv ZoneInterval) WallOffset() time.Duration { return iv.Std + iv.Save }

// Contains reports whether t falls within the interval.
func (iv ZoneInterval) Contains(t Instant) bool { return t >= iv.Start && t < iv.End }

// TailZone is a pair of recurrences that a zone settles into forever:
// Start activates the saved time each year, End returns to standard
// time. It reproduces every transition from the start of the
// timeline's final interval into the indefinite future.
type TailZone struct {
	Std       time.Duration
	Start     Recurrence
	End       Recurrence
	StartName string
	EndName   string
}

// Timeline is the compiled form of one zone: precomputed intervals and,
// for zones that settle into a steady yearly pattern, the repeating
// tail that extends the last interval.
type Timeline struct {
	Zone      string
	Intervals []ZoneInterval
	Tail      *TailZone
}

// Config bounds a compilation.
type Config struct {
	// LimitYear is the last year the builder will precompute explicit
	// transitions for. A zone that is still producing transitions past
	// it without having settled into a tail pair fails with
	// ErrPrecomputeLimit rather than looping.
	LimitYear int
	// Workers is the number of zones compiled concurrently by
	// CompileAll. Zones are independent of each other, so any degree
	// of parallelism is safe.
	Workers int
}

// DefaultConfig precomputes a century ahead, which every zone in the
// published database settles well within, and uses one worker per CPU.
func DefaultConfig() Config {
	return Config{
		LimitYear: time.Now().Year() + 100,
		Workers:   runtime.GOMAXPROCS(0),
	}
}

// BuildTimeline compiles one zone, resolving aliases first. It walks
// the zone's lines in order, expanding rule-driven segments transition
// by transition, and detects the repeating tail that lets the timeline
// stay finite.
func (db *Database) BuildTimeline(zone string, cfg Config) (Timeline, error) {
	name, err := db.Canonical(zone)
	if err != nil {
		return Timeline{}, err
	}
	b := &builder{db: db, cfg: cfg, zone: name}
	if err := b.run(); err != nil {
		return Timeline{}, err
	}
	return Timeline{Zone: name, Intervals: b.intervals, Tail: b.tail}, nil
}

// builder holds the walk state of one zone compilation.
type builder struct {
	db   *Database
	cfg  Config
	zone string

	cur       Instant        // start of the part of the timeline not yet covered
	last      ZoneTransition // transition that opened the interval being built
	haveLast  bool
	intervals []ZoneInterval
	tail      *TailZone
}

func (b *builder) run() error {
	lines := b.db.zones[b.zone]
	b.cur = MinInstant

	for i, l := range lines {
		rs, err := b.db.resolveRuleSet(b.zone, l)
		if err != nil {
			return err
		}
		final := i == len(lines)-1
		if !final && !rs.until.Defined {
			return fmt.Errorf("zone %s: line %d has no UNTIL but is not the last", b.zone, i+1)
		}

		switch rs.kind {
		case fixedSet:
			err = b.fixedSegment(rs)
		case ruleDrivenSet:
			err = b.ruleSegment(rs, final)
		}
		if err != nil {
			return err
		}
	}

	if b.haveLast {
		end := MaxInstant
		if len(lines) > 0 && lines[len(lines)-1].Until.Defined {
			end = b.cur
		}
		if end > b.last.At {
			b.intervals = append(b.intervals, b.interval(b.last, end))
		}
	}
	return nil
}

func (b *builder) interval(tr ZoneTransition, end Instant) ZoneInterval {
	return ZoneInterval{Name: tr.Name, Start: tr.At, End: end, Std: tr.Std, Save: tr.Save}
}

// record accounts for a candidate transition. The first transition of
// the zone only opens the initial interval; a later candidate closes
// the current interval only if it observably changes something, which
// also keeps equal neighboring intervals merged.
func (b *builder) record(tr ZoneTransition) bool {
	if !b.haveLast {
		b.last, b.haveLast = tr, true
		return true
	}
	if !tr.isTransitionFrom(b.last) {
		return false
	}
	b.intervals = append(b.intervals, b.interval(b.last, tr.At))
	b.last = tr
	return true
}

// fixedSegment covers a zone line whose RULES column is "-" or a fixed
// savings amount: a single state from the segment start to UNTIL.
func (b *builder) fixedSegment(rs zoneRuleSet) error {
	until := rs.untilInstant(rs.save)
	if until != MaxInstant {
		if until < b.cur {
			return fmt.Errorf("zone %s: UNTIL %s precedes the segment start %s", b.zone, until, b.cur)
		}
		if until == b.cur {
			return nil // zero-width segment
		}
	}
	b.record(ZoneTransition{
		At:   b.cur,
		Name: expandFormat(rs.format, "", rs.std, rs.save),
		Std:  rs.std,
		Save: rs.save,
	})
	b.cur = until
	return nil
}

// ruleSegment covers a zone line governed by a named rule set. It
// establishes the state in effect when the segment opens, then replays
// the recurrences in order until the segment's UNTIL, the repeating
// tail is confirmed, or the precompute limit trips.
func (b *builder) ruleSegment(rs zoneRuleSet, final bool) error {
	active := make([]Recurrence, len(rs.rules))
	copy(active, rs.rules)

	entry := b.segmentEntry(rs)
	if until := rs.untilInstant(entry.Save); until != MaxInstant {
		if until < b.cur {
			return fmt.Errorf("zone %s: UNTIL %s precedes the segment start %s", b.zone, until, b.cur)
		}
		if until == b.cur {
			return nil // zero-width segment
		}
	}
	b.record(entry)

	var (
		tailCand *TailZone
		tailSeen [2]bool
	)
	for {
		if y := b.cur.year(); y > b.cfg.LimitYear {
			return fmt.Errorf("zone %s: transitions past year %d: %w", b.zone, b.cfg.LimitYear, ErrPrecomputeLimit)
		}

		// Earliest next occurrence across the still-active rules. Ties
		// go to the later-declared rule. Rules with nothing left to
		// contribute drop out for good.
		bestIdx := -1
		var bestAt Instant
		for idx := 0; idx < len(active); idx++ {
			occ, ok := active[idx].NextAfter(b.cur, rs.std, b.last.Save)
			if !ok {
				active = append(active[:idx], active[idx+1:]...)
				idx--
				continue
			}
			if bestIdx < 0 || occ <= bestAt {
				bestIdx, bestAt = idx, occ
			}
		}

		until := rs.untilInstant(b.last.Save)
		if bestIdx < 0 || bestAt >= until {
			b.cur = until
			return nil
		}

		r := active[bestIdx]
		recorded := b.record(ZoneTransition{
			At:   bestAt,
			Name: expandFormat(rs.format, r.Letter, rs.std, r.Save),
			Std:  rs.std,
			Save: r.Save,
		})
		b.cur = bestAt

		if !final || !recorded {
			continue
		}
		// Once only two rules remain and both repeat forever, the zone
		// has settled into a yearly pattern. The tail is trusted only
		// after each of the pair has produced a transition with it in
		// place, proving the pattern has actually begun.
		if tailCand == nil {
			if len(active) == 2 && active[0].Infinite() && active[1].Infinite() {
				tailCand = newTailZone(rs, active[0], active[1])
				tailSeen = [2]bool{}
			}
			continue
		}
		tailSeen[bestIdx] = true
		if tailSeen[0] && tailSeen[1] {
			b.tail = tailCand
			b.cur = MaxInstant
			return nil
		}
	}
}

// segmentEntry determines the state in effect the moment a rule-driven
// segment opens: the most recent occurrence at or before the segment
// start wins, later-declared rules breaking ties. Occurrences near the
// boundary are resolved with the offsets in force before it, which are
// the previous segment's. If no rule has occurred yet, the segment
// opens in standard time, named after the first zero-savings rule so
// that a FORMAT with %s still expands.
func (b *builder) segmentEntry(rs zoneRuleSet) ZoneTransition {
	prevStd, prevSave := rs.std, time.Duration(0)
	if b.haveLast {
		prevStd, prevSave = b.last.Std, b.last.Save
	}
	var (
		found  bool
		bestAt Instant
		letter string
		save   time.Duration
	)
	for _, r := range rs.rules {
		occ, ok := r.PreviousOrAt(b.cur, prevStd, prevSave)
		if !ok {
			continue
		}
		if !found || occ >= bestAt {
			found, bestAt = true, occ
			letter, save = r.Letter, r.Save
		}
	}
	if !found {
		for _, r := range rs.rules {
			if r.Save == 0 {
				letter = r.Letter
				break
			}
		}
		save = 0
	}
	return ZoneTransition{
		At:   b.cur,
		Name: expandFormat(rs.format, letter, rs.std, save),
		Std:  rs.std,
		Save: save,
	}
}

// newTailZone pairs the two remaining recurrences into a tail, taking
// the one with the larger savings as the activation of saved time.
func newTailZone(rs zoneRuleSet, a, b Recurrence) *TailZone {
	on, off := a, b
	if off.Save > on.Save {
		on, off = off, on
	}
	return &TailZone{
		Std:       rs.std,
		Start:     on,
		End:       off,
		StartName: expandFormat(rs.format, on.Letter, rs.std, on.Save),
		EndName:   expandFormat(rs.format, off.Letter, rs.std, off.Save),
	}
}
