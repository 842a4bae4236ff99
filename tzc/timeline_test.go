package tzc

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/zicgo/zic/tzdata"
)

func testConfig() Config {
	return Config{LimitYear: 2100, Workers: 1}
}

func loadDatabase(t *testing.T, src string) *Database {
	t.Helper()
	f, err := tzdata.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	db := NewDatabase()
	if err := db.Add(f); err != nil {
		t.Fatalf("add: %v", err)
	}
	return db
}

func TestBuildTimelineFixedZone(t *testing.T) {
	db := loadDatabase(t, `
Zone Asia/Tokio 9:00 - JST
`)
	tl, err := db.BuildTimeline("Asia/Tokio", testConfig())
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	want := Timeline{
		Zone: "Asia/Tokio",
		Intervals: []ZoneInterval{
			{Name: "JST", Start: MinInstant, End: MaxInstant, Std: 9 * time.Hour},
		},
	}
	if diff := cmp.Diff(want, tl); diff != "" {
		t.Errorf("timeline mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTimelineFixedSegments(t *testing.T) {
	db := loadDatabase(t, `
Zone Test/Fixed -1:00 - -01 1970 Jan 1 0:00u
               0:00   1:00 +01 1980 Jan 1 0:00u
               0:00   -    GMT
`)
	tl, err := db.BuildTimeline("Test/Fixed", testConfig())
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	want := []ZoneInterval{
		{Name: "-01", Start: MinInstant, End: 0, Std: -time.Hour},
		{Name: "+01", Start: 0, End: instantAt(1980, 1, 1, 0, 0, 0), Save: time.Hour},
		{Name: "GMT", Start: instantAt(1980, 1, 1, 0, 0, 0), End: MaxInstant},
	}
	if diff := cmp.Diff(want, tl.Intervals); diff != "" {
		t.Errorf("intervals mismatch (-want +got):\n%s", diff)
	}
	if tl.Tail != nil {
		t.Errorf("fixed zone grew a tail: %+v", tl.Tail)
	}
}

const euStyleSource = `
Rule EU 1981 max - Mar lastSun 1:00u 1:00 S
Rule EU 1996 max - Oct lastSun 1:00u 0    -
Zone Test/Europe 1:00 -  CET 1981
                 1:00 EU CE%sT
`

func TestBuildTimelineTail(t *testing.T) {
	db := loadDatabase(t, euStyleSource)
	tl, err := db.BuildTimeline("Test/Europe", testConfig())
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}

	// The zone settles into the two-rule pattern, so the precomputed
	// part stays short: it ends as soon as both rules have fired with
	// the tail in place.
	want := []ZoneInterval{
		{Name: "CET", Start: MinInstant, End: instantAt(1981, 3, 29, 1, 0, 0), Std: time.Hour},
		{Name: "CEST", Start: instantAt(1981, 3, 29, 1, 0, 0), End: instantAt(1996, 10, 27, 1, 0, 0), Std: time.Hour, Save: time.Hour},
		{Name: "CET", Start: instantAt(1996, 10, 27, 1, 0, 0), End: instantAt(1997, 3, 30, 1, 0, 0), Std: time.Hour},
		{Name: "CEST", Start: instantAt(1997, 3, 30, 1, 0, 0), End: MaxInstant, Std: time.Hour, Save: time.Hour},
	}
	if diff := cmp.Diff(want, tl.Intervals); diff != "" {
		t.Errorf("intervals mismatch (-want +got):\n%s", diff)
	}

	if tl.Tail == nil {
		t.Fatal("no tail detected")
	}
	if got, want := tl.Tail.StartName, "CEST"; got != want {
		t.Errorf("tail start name = %q, want %q", got, want)
	}
	if got, want := tl.Tail.EndName, "CET"; got != want {
		t.Errorf("tail end name = %q, want %q", got, want)
	}
	if got, want := tl.Tail.Std, time.Hour; got != want {
		t.Errorf("tail std = %v, want %v", got, want)
	}
	if !tl.Tail.Start.Infinite() || !tl.Tail.End.Infinite() {
		t.Error("tail recurrences are not infinite")
	}
	if got, want := tl.Tail.Start.Save, time.Hour; got != want {
		t.Errorf("tail start save = %v, want %v", got, want)
	}
}

func TestBuildTimelineZeroWidthRuleSegment(t *testing.T) {
	// The middle line expires at the very instant it begins. It must
	// leave no interval behind and no trace in the state the next
	// segment starts from.
	db := loadDatabase(t, `
Rule R 1990 max - Mar lastSun 1:00u 1:00 S
Rule R 1990 max - Oct lastSun 1:00u 0    -
Zone Test/Blink 1:00 - CET   1980 Jan 1 0:00u
                2:00 R EE%sT 1980 Jan 1 0:00u
                1:00 R CE%sT
`)
	tl, err := db.BuildTimeline("Test/Blink", testConfig())
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	want := []ZoneInterval{
		{Name: "CET", Start: MinInstant, End: instantAt(1990, 3, 25, 1, 0, 0), Std: time.Hour},
		{Name: "CEST", Start: instantAt(1990, 3, 25, 1, 0, 0), End: instantAt(1990, 10, 28, 1, 0, 0), Std: time.Hour, Save: time.Hour},
		{Name: "CET", Start: instantAt(1990, 10, 28, 1, 0, 0), End: instantAt(1991, 3, 31, 1, 0, 0), Std: time.Hour},
		{Name: "CEST", Start: instantAt(1991, 3, 31, 1, 0, 0), End: MaxInstant, Std: time.Hour, Save: time.Hour},
	}
	if diff := cmp.Diff(want, tl.Intervals); diff != "" {
		t.Errorf("intervals mismatch (-want +got):\n%s", diff)
	}
	if tl.Tail == nil {
		t.Error("no tail detected")
	}
}

func TestBuildTimelineAlias(t *testing.T) {
	db := loadDatabase(t, euStyleSource+`
Link Test/Europe Test/Alias
Link Test/Alias  Test/Alias2
`)
	tl, err := db.BuildTimeline("Test/Alias2", testConfig())
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	if got, want := tl.Zone, "Test/Europe"; got != want {
		t.Errorf("timeline zone = %q, want %q", got, want)
	}
}

func TestBuildTimelineErrors(t *testing.T) {
	t.Run("unknown zone", func(t *testing.T) {
		db := loadDatabase(t, euStyleSource)
		_, err := db.BuildTimeline("Test/Nowhere", testConfig())
		if !errors.Is(err, ErrUnknownZone) {
			t.Errorf("err = %v, want ErrUnknownZone", err)
		}
	})

	t.Run("link cycle", func(t *testing.T) {
		db := loadDatabase(t, `
Link Test/B Test/A
Link Test/A Test/B
`)
		_, err := db.BuildTimeline("Test/A", testConfig())
		if !errors.Is(err, ErrLinkCycle) {
			t.Errorf("err = %v, want ErrLinkCycle", err)
		}
	})

	t.Run("unknown rule reference", func(t *testing.T) {
		db := loadDatabase(t, `
Zone Test/Orphan 1:00 Ghost CE%sT
`)
		_, err := db.BuildTimeline("Test/Orphan", testConfig())
		var ure *UnknownRuleReferenceError
		if !errors.As(err, &ure) {
			t.Fatalf("err = %v, want UnknownRuleReferenceError", err)
		}
		if ure.Zone != "Test/Orphan" || ure.Name != "Ghost" {
			t.Errorf("UnknownRuleReferenceError = %+v", ure)
		}
	})

	t.Run("rule segment with UNTIL before its start", func(t *testing.T) {
		db := loadDatabase(t, `
Rule R 1990 max - Mar lastSun 1:00u 1:00 S
Rule R 1990 max - Oct lastSun 1:00u 0    -
Zone Test/Backwards 1:00 - CET   1980 Jan 1 0:00u
                    1:00 R CE%sT 1979 Jan 1 0:00u
                    1:00 - CET
`)
		_, err := db.BuildTimeline("Test/Backwards", testConfig())
		if err == nil || !strings.Contains(err.Error(), "precedes the segment start") {
			t.Errorf("err = %v, want an UNTIL-ordering error", err)
		}
	})

	t.Run("single endless rule trips the limit", func(t *testing.T) {
		// One infinite recurrence never forms a tail pair, so the
		// builder keeps walking years until the horizon stops it.
		db := loadDatabase(t, `
Rule Lone 1990 max - Mar lastSun 1:00u 1:00 D
Zone Test/Endless 1:00 Lone X%sT
`)
		_, err := db.BuildTimeline("Test/Endless", Config{LimitYear: 2050, Workers: 1})
		if !errors.Is(err, ErrPrecomputeLimit) {
			t.Errorf("err = %v, want ErrPrecomputeLimit", err)
		}
	})
}

func TestBuildTimelineTieBreak(t *testing.T) {
	// Two rules firing at the same instant: the later-declared one
	// decides the state. The earlier twin is bounded so that the zone
	// can still settle into a tail once it expires.
	db := loadDatabase(t, `
Rule Twin 1990 2000 - Mar lastSun 1:00u 0:30 A
Rule Twin 1990 max  - Mar lastSun 1:00u 1:00 B
Rule Twin 1990 max  - Oct lastSun 1:00u 0    -
Zone Test/Twin 1:00 Twin X%sT
`)
	tl, err := db.BuildTimeline("Test/Twin", testConfig())
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	for _, iv := range tl.Intervals {
		if iv.Name == "XAT" {
			t.Errorf("interval %+v uses the earlier-declared twin rule", iv)
		}
	}
	var sawB bool
	for _, iv := range tl.Intervals {
		if iv.Name == "XBT" && iv.Save == time.Hour {
			sawB = true
		}
	}
	if !sawB {
		t.Error("later-declared twin rule never took effect")
	}
}

func TestExpandFormat(t *testing.T) {
	tests := []struct {
		format string
		letter string
		std    time.Duration
		save   time.Duration
		want   string
	}{
		{"CE%sT", "S", time.Hour, time.Hour, "CEST"},
		{"CE%sT", "", time.Hour, 0, "CET"},
		{"WET/WEST", "", 0, 0, "WET"},
		{"WET/WEST", "", 0, time.Hour, "WEST"},
		{"%z", "", 5*time.Hour + 30*time.Minute, 0, "+0530"},
		{"%z", "", -3 * time.Hour, 0, "-03"},
		{"%z", "", time.Hour, 30 * time.Minute, "+0130"},
		{"LMT", "", time.Hour, 0, "LMT"},
	}
	for _, tc := range tests {
		got := expandFormat(tc.format, tc.letter, tc.std, tc.save)
		if got != tc.want {
			t.Errorf("expandFormat(%q, %q, %v, %v) = %q, want %q",
				tc.format, tc.letter, tc.std, tc.save, got, tc.want)
		}
	}
}

func TestCompileAll(t *testing.T) {
	db := loadDatabase(t, euStyleSource+`
Zone Asia/Tokio 9:00 - JST
Link Test/Europe Test/Alias
`)
	got, err := CompileAll(db, Config{LimitYear: 2100, Workers: 4})
	if err != nil {
		t.Fatalf("CompileAll: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("compiled %d zones, want 2", len(got))
	}
	for _, zone := range []string{"Asia/Tokio", "Test/Europe"} {
		if _, ok := got[zone]; !ok {
			t.Errorf("zone %s missing from result", zone)
		}
	}
}

func TestCompileAllRerunsIdentically(t *testing.T) {
	// Loading the same source twice and compiling each load must yield
	// the same timelines, intervals and tails included.
	src := euStyleSource + `
Zone Asia/Tokio 9:00 - JST
Link Test/Europe Test/Alias
`
	first, err := CompileAll(loadDatabase(t, src), testConfig())
	if err != nil {
		t.Fatalf("CompileAll: %v", err)
	}
	second, err := CompileAll(loadDatabase(t, src), testConfig())
	if err != nil {
		t.Fatalf("CompileAll: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("re-run produced different timelines (-first +second):\n%s", diff)
	}
}

func TestCompileAllReportsFailures(t *testing.T) {
	db := loadDatabase(t, `
Zone Asia/Tokio  9:00 -     JST
Zone Test/Orphan 1:00 Ghost X%sT
`)
	got, err := CompileAll(db, Config{LimitYear: 2100, Workers: 2})
	if err == nil {
		t.Fatal("CompileAll: no error for a zone with a dangling rule reference")
	}
	var ure *UnknownRuleReferenceError
	if !errors.As(err, &ure) {
		t.Errorf("err = %v, want to wrap UnknownRuleReferenceError", err)
	}
	if _, ok := got["Asia/Tokio"]; !ok {
		t.Error("healthy zone suppressed by the failing one")
	}
}
