package tzc

import (
	"errors"
	"fmt"
)

// ErrUnsupportedRule reports a rule line that is valid tzdata but that
// the compiler deliberately does not implement, such as an odd/even
// year-type rule with an unbounded year range.
var ErrUnsupportedRule = errors.New("unsupported rule")

// ErrUnknownZone reports a zone name that is neither a zone nor an alias.
var ErrUnknownZone = errors.New("unknown zone")

// ErrLinkCycle reports an alias chain that never reaches a zone.
var ErrLinkCycle = errors.New("link cycle")

// ErrPrecomputeLimit reports a rule-driven segment that generated
// transitions past the configured horizon without settling into a
// repeating tail pair.
var ErrPrecomputeLimit = errors.New("precompute limit exceeded")

// UnknownRuleReferenceError reports a zone line whose RULES column
// names a rule set that is not in the database.
type UnknownRuleReferenceError struct {
	Zone string
	Name string
}

func (e *UnknownRuleReferenceError) Error() string {
	return fmt.Sprintf("zone %s references unknown rule set %q", e.Zone, e.Name)
}
