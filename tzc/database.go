package tzc

import (
	"fmt"
	"sort"

	"github.com/zicgo/zic/tzdata"
)

// Database is the accumulated content of one or more parsed tzdata
// files: rule sets by name, zone lines by zone name in file order, and
// aliases. It is mutated only while files are added and must be
// treated as read-only once timeline building starts; the builder
// relies on that for parallelism.
type Database struct {
	version string
	rules   map[string][]Recurrence
	zones   map[string][]tzdata.ZoneLine
	links   map[string]string // alias -> target
	order   []string          // zone names in first-seen order
}

// NewDatabase returns an empty database.
func NewDatabase() *Database {
	return &Database{
		rules: make(map[string][]Recurrence),
		zones: make(map[string][]tzdata.ZoneLine),
		links: make(map[string]string),
	}
}

// SetVersion records the release tag of the source data, e.g. "2024a".
func (db *Database) SetVersion(v string) { db.version = v }

// Version returns the release tag of the source data, if known.
func (db *Database) Version() string { return db.version }

// Add merges one parsed file into the database.
func (db *Database) Add(f tzdata.File) error {
	for _, l := range f.Rules {
		rs, err := expandRuleLine(l)
		if err != nil {
			return fmt.Errorf("rule %s: %w", l.Name, err)
		}
		db.rules[l.Name] = append(db.rules[l.Name], rs...)
	}
	for _, z := range f.Zones {
		if _, seen := db.zones[z.Name]; !seen {
			db.order = append(db.order, z.Name)
		}
		db.zones[z.Name] = append(db.zones[z.Name], z)
	}
	for _, l := range f.Links {
		db.links[l.To] = l.From
	}
	return nil
}

// Rules returns the recurrences registered under a rule-set name.
func (db *Database) Rules(name string) ([]Recurrence, bool) {
	rs, ok := db.rules[name]
	return rs, ok
}

// ZoneLines returns the zone lines of a zone in file order. The name
// must be canonical; aliases are not followed.
func (db *Database) ZoneLines(name string) ([]tzdata.ZoneLine, bool) {
	zs, ok := db.zones[name]
	return zs, ok
}

// Zones returns the canonical zone names in sorted order.
func (db *Database) Zones() []string {
	names := make([]string, len(db.order))
	copy(names, db.order)
	sort.Strings(names)
	return names
}

// Aliases returns a copy of the alias map, alias to link target. Note
// that a target can itself be an alias.
func (db *Database) Aliases() map[string]string {
	m := make(map[string]string, len(db.links))
	for k, v := range db.links {
		m[k] = v
	}
	return m
}

// Canonical resolves a zone name through any chain of aliases to the
// name of a zone with zone lines. A chain that revisits a name, or
// that ends on a name that is neither zone nor alias, is an error: the
// format leaves the behavior of dangling chains unspecified and we
// refuse them rather than loop.
func (db *Database) Canonical(name string) (string, error) {
	visited := make(map[string]bool)
	for {
		if _, ok := db.zones[name]; ok {
			return name, nil
		}
		if visited[name] {
			return "", fmt.Errorf("%w: via %q", ErrLinkCycle, name)
		}
		visited[name] = true
		target, ok := db.links[name]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownZone, name)
		}
		name = target
	}
}
