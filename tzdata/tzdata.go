// Package tzdata parses the text format of the IANA Time Zone Database
// as distributed at https://www.iana.org/time-zones.
package tzdata

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"time"
)

// RuleLine is one parsed rule line.
//
//	Rule  NAME  FROM  TO  TYPE  IN  ON  AT  SAVE  LETTER/S
type RuleLine struct {
	Name   string
	From   Year
	To     Year
	Type   string // "-" for ordinary rules; historically "odd" or "even"
	In     time.Month
	On     Day
	At     TimeOfDay
	Save   time.Duration
	Letter string // variable part of the FORMAT abbreviation; empty for "-"
}

// RuleRefForm is the tag of a RuleRef.
type RuleRefForm int

const (
	// RuleRefNone means standard time always applies (RULES column "-").
	RuleRefNone RuleRefForm = iota
	// RuleRefSave means the RULES column carries a fixed amount of
	// time added to standard time.
	RuleRefSave
	// RuleRefName means the RULES column references rule lines by name.
	RuleRefName
)

// RuleRef is the RULES column of a zone line.
type RuleRef struct {
	Form RuleRefForm
	Save time.Duration // set if Form is RuleRefSave
	Name string        // set if Form is RuleRefName
}

// Until is the UNTIL column of a zone line. Trailing fields that were
// omitted in the input default to the earliest possible value, so a
// defined Until is always fully specified.
type Until struct {
	Defined bool
	Year    Year
	Month   time.Month
	Day     Day
	Time    TimeOfDay
}

// ZoneLine is one zone line or continuation line. Name is always set;
// continuation lines inherit the name of the zone they continue.
type ZoneLine struct {
	Name         string
	Continuation bool
	StdOffset    time.Duration // STDOFF column
	Rules        RuleRef
	Format       string
	Until        Until
}

// LinkLine is one link line. From names an existing zone (the link
// target), To the alias being declared.
type LinkLine struct {
	From string
	To   string
}

// LeapLine is one leap line of a leapseconds file. Leap lines are
// retained so those files load, but they do not take part in zone
// compilation.
type LeapLine struct {
	Year    int
	Month   time.Month
	Day     int
	Time    time.Duration
	Added   bool // "+" correction; false means a second was skipped
	Rolling bool // local-time leap; false means stationary (UTC)
}

// ExpiresLine is the expiration line of a leapseconds file.
type ExpiresLine struct {
	Year  int
	Month time.Month
	Day   int
	Time  time.Duration
}

// File is the result of parsing one tzdata or leapsecond file, with
// each kind of line in input order.
type File struct {
	Rules   []RuleLine
	Zones   []ZoneLine
	Links   []LinkLine
	Leaps   []LeapLine
	Expires []ExpiresLine
}

// Parse reads a tzdata file line by line. Comments and blank lines are
// inert. A line whose first field is not a known keyword is a zone
// continuation line and requires a preceding zone line.
//
// Parsing stops at the first malformed line: the database is a trusted,
// versioned input, and loud failure beats silent corruption of the
// compiled output.
func Parse(r io.Reader) (File, error) {
	var (
		f           File
		scanner     = bufio.NewScanner(r)
		lineNumber  int
		currentZone string
	)
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		toks, err := SplitLine(line)
		if err == nil {
			currentZone, err = parseLine(&f, toks, currentZone)
		}
		if err != nil {
			return f, &LineError{Number: lineNumber, Text: line, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return f, fmt.Errorf("scanner: %w", err)
	}
	return f, nil
}

// parseLine dispatches one tokenized line on its leading keyword and
// returns the zone name that subsequent continuation lines belong to.
func parseLine(f *File, toks *Tokens, currentZone string) (string, error) {
	kw, ok := toks.Peek()
	if !ok {
		return currentZone, nil // blank after comment stripping
	}
	switch kw {
	case "Rule":
		r, err := parseRuleLine(toks)
		if err != nil {
			return "", fmt.Errorf("parse rule: %w", err)
		}
		f.Rules = append(f.Rules, r)
		return "", nil
	case "Link":
		l, err := parseLinkLine(toks)
		if err != nil {
			return "", fmt.Errorf("parse link: %w", err)
		}
		f.Links = append(f.Links, l)
		return currentZone, nil
	case "Zone":
		z, err := parseZoneLine(toks)
		if err != nil {
			return "", fmt.Errorf("parse zone: %w", err)
		}
		f.Zones = append(f.Zones, z)
		return z.Name, nil
	case "Leap":
		l, err := parseLeapLine(toks)
		if err != nil {
			return "", fmt.Errorf("parse leap: %w", err)
		}
		f.Leaps = append(f.Leaps, l)
		return currentZone, nil
	case "Expires":
		e, err := parseExpiresLine(toks)
		if err != nil {
			return "", fmt.Errorf("parse expires: %w", err)
		}
		f.Expires = append(f.Expires, e)
		return currentZone, nil
	default:
		if currentZone == "" {
			return "", fmt.Errorf("%w: continuation line without a preceding Zone", ErrMalformedLine)
		}
		z, err := parseZoneContinuation(toks, currentZone)
		if err != nil {
			return "", fmt.Errorf("parse zone continuation: %w", err)
		}
		f.Zones = append(f.Zones, z)
		return currentZone, nil
	}
}

func parseRuleLine(toks *Tokens) (RuleLine, error) {
	var r RuleLine
	toks.Next() // keyword

	s, err := toks.Require("NAME")
	if err != nil {
		return r, err
	}
	if r.Name, err = parseRuleName(s); err != nil {
		return r, err
	}
	if s, err = toks.Require("FROM"); err != nil {
		return r, err
	}
	if r.From, err = parseYear(s, 0); err != nil {
		return r, fmt.Errorf("FROM: %w", err)
	}
	if s, err = toks.Require("TO"); err != nil {
		return r, err
	}
	if r.To, err = parseYear(s, r.From); err != nil {
		return r, fmt.Errorf("TO: %w", err)
	}
	if r.Type, err = toks.Require("TYPE"); err != nil {
		return r, err
	}
	if s, err = toks.Require("IN"); err != nil {
		return r, err
	}
	if r.In, err = parseMonth(s); err != nil {
		return r, fmt.Errorf("IN: %w", err)
	}
	if s, err = toks.Require("ON"); err != nil {
		return r, err
	}
	if r.On, err = parseDay(s); err != nil {
		return r, fmt.Errorf("ON: %w", err)
	}
	if s, err = toks.Require("AT"); err != nil {
		return r, err
	}
	if r.At, err = parseAt(s); err != nil {
		return r, fmt.Errorf("AT: %w", err)
	}
	if s, err = toks.Require("SAVE"); err != nil {
		return r, err
	}
	if r.Save, err = parseSave(s); err != nil {
		return r, fmt.Errorf("SAVE: %w", err)
	}
	if s, err = toks.Require("LETTER"); err != nil {
		return r, err
	}
	if s != "-" {
		r.Letter = s
	}
	return r, nil
}

// parseRuleName validates the NAME column of a rule line. The name
// must not start with a digit or a sign, so that the RULES column of a
// zone line stays distinguishable from a fixed offset.
func parseRuleName(s string) (string, error) {
	if len(s) == 0 {
		return "", invalidf("empty rule name")
	}
	if c := s[0]; (c >= '0' && c <= '9') || c == '-' || c == '+' {
		return "", invalidf("rule name %q starts with %q", s, string(c))
	}
	return s, nil
}

func parseLinkLine(toks *Tokens) (LinkLine, error) {
	toks.Next() // keyword
	from, err := toks.Require("TARGET")
	if err != nil {
		return LinkLine{}, err
	}
	to, err := toks.Require("LINK-NAME")
	if err != nil {
		return LinkLine{}, err
	}
	return LinkLine{From: from, To: to}, nil
}

func parseZoneLine(toks *Tokens) (ZoneLine, error) {
	toks.Next() // keyword
	name, err := toks.Require("NAME")
	if err != nil {
		return ZoneLine{}, err
	}
	z, err := parseZoneBody(toks)
	if err != nil {
		return z, err
	}
	z.Name = name
	return z, nil
}

func parseZoneContinuation(toks *Tokens, zone string) (ZoneLine, error) {
	z, err := parseZoneBody(toks)
	if err != nil {
		return z, err
	}
	z.Name = zone
	z.Continuation = true
	return z, nil
}

// parseZoneBody parses the STDOFF RULES FORMAT [UNTIL] columns shared
// by zone lines and continuation lines.
func parseZoneBody(toks *Tokens) (ZoneLine, error) {
	var z ZoneLine
	s, err := toks.Require("STDOFF")
	if err != nil {
		return z, err
	}
	if z.StdOffset, err = ParseOffset(s); err != nil {
		return z, fmt.Errorf("STDOFF: %w", err)
	}
	if s, err = toks.Require("RULES"); err != nil {
		return z, err
	}
	if z.Rules, err = parseRuleRef(s); err != nil {
		return z, fmt.Errorf("RULES: %w", err)
	}
	if z.Format, err = toks.Require("FORMAT"); err != nil {
		return z, err
	}
	if z.Until, err = parseUntil(toks.Rest()); err != nil {
		return z, fmt.Errorf("UNTIL: %w", err)
	}
	return z, nil
}

// parseRuleRef parses the RULES column of a zone line: "-" for pure
// standard time, a fixed savings amount, or the name of a rule set.
// Whether a name actually resolves is only known once the whole
// database is loaded.
func parseRuleRef(s string) (RuleRef, error) {
	if s == "-" {
		return RuleRef{Form: RuleRefNone}, nil
	}
	if d, err := parseSave(s); err == nil {
		return RuleRef{Form: RuleRefSave, Save: d}, nil
	}
	if _, err := parseRuleName(s); err != nil {
		return RuleRef{}, err
	}
	return RuleRef{Form: RuleRefName, Name: s}, nil
}

// parseUntil parses the YEAR [MONTH [DAY [TIME]]] fields of the UNTIL
// column. Omitted trailing fields default to the earliest possible
// value for the missing field.
func parseUntil(fields []string) (Until, error) {
	if len(fields) == 0 {
		return Until{}, nil
	}
	if len(fields) > 4 {
		return Until{}, invalidf("too many fields: %d", len(fields))
	}

	u := Until{
		Defined: true,
		Month:   time.January,
		Day:     NewDayNum(1),
	}
	var err error
	if u.Year, err = parseYear(fields[0], 0); err != nil {
		return u, err
	}
	if len(fields) > 1 {
		if u.Month, err = parseMonth(fields[1]); err != nil {
			return u, err
		}
	}
	if len(fields) > 2 {
		if u.Day, err = parseDay(fields[2]); err != nil {
			return u, err
		}
	}
	if len(fields) > 3 {
		if u.Time, err = parseAt(fields[3]); err != nil {
			return u, err
		}
	}
	return u, nil
}

func parseLeapLine(toks *Tokens) (LeapLine, error) {
	var l LeapLine
	toks.Next() // keyword

	y, m, d, t, err := parseLeapDate(toks)
	if err != nil {
		return l, err
	}
	l.Year, l.Month, l.Day, l.Time = y, m, d, t

	corr, err := toks.Require("CORR")
	if err != nil {
		return l, err
	}
	switch corr {
	case "+":
		l.Added = true
	case "-":
	default:
		return l, invalidf("leap correction %q", corr)
	}

	rs, err := toks.Require("R/S")
	if err != nil {
		return l, err
	}
	switch {
	case isAbbrev(rs, "Rolling", "R") || isAbbrev(rs, "rolling", "r"):
		l.Rolling = true
	case isAbbrev(rs, "Stationary", "S") || isAbbrev(rs, "stationary", "s"):
	default:
		return l, invalidf("leap mode %q", rs)
	}
	return l, nil
}

func parseExpiresLine(toks *Tokens) (ExpiresLine, error) {
	toks.Next() // keyword
	y, m, d, t, err := parseLeapDate(toks)
	if err != nil {
		return ExpiresLine{}, err
	}
	return ExpiresLine{Year: y, Month: m, Day: d, Time: t}, nil
}

func parseLeapDate(toks *Tokens) (int, time.Month, int, time.Duration, error) {
	s, err := toks.Require("YEAR")
	if err != nil {
		return 0, 0, 0, 0, err
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, 0, 0, 0, invalidf("year %q", s)
	}
	if s, err = toks.Require("MONTH"); err != nil {
		return 0, 0, 0, 0, err
	}
	m, err := parseMonth(s)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if s, err = toks.Require("DAY"); err != nil {
		return 0, 0, 0, 0, err
	}
	d, err := strconv.Atoi(s)
	if err != nil {
		return 0, 0, 0, 0, invalidf("day %q", s)
	}
	if s, err = toks.Require("HH:MM:SS"); err != nil {
		return 0, 0, 0, 0, err
	}
	t, err := parseLeapTime(s)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return y, m, d, t, nil
}

// parseLeapTime parses HH:MM:SS allowing the second 60 that a leap
// line necessarily names.
func parseLeapTime(s string) (time.Duration, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		return 0, invalidf("time %q", s)
	}
	if m < 0 || m > 59 || sec < 0 || sec > 60 {
		return 0, invalidf("time %q", s)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
}
