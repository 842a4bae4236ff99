package tzif

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/zicgo/zic/tzc"
	"github.com/zicgo/zic/tzdata"
)

func compileZone(t *testing.T, src, zone string) tzc.Timeline {
	t.Helper()
	f, err := tzdata.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	db := tzc.NewDatabase()
	if err := db.Add(f); err != nil {
		t.Fatalf("add: %v", err)
	}
	tl, err := db.BuildTimeline(zone, tzc.Config{LimitYear: 2100, Workers: 1})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return tl
}

const euStyleSource = `
Rule EU 1981 max - Mar lastSun 1:00u 1:00 S
Rule EU 1996 max - Oct lastSun 1:00u 0    -
Zone Test/Europe 1:00 -  CET 1981
                 1:00 EU CE%sT
`

func TestFromTimeline(t *testing.T) {
	tl := compileZone(t, euStyleSource, "Test/Europe")
	d, err := FromTimeline(tl)
	if err != nil {
		t.Fatalf("FromTimeline: %v", err)
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if got, want := len(d.TransitionTimes), len(tl.Intervals)-1; got != want {
		t.Errorf("%d transitions, want %d", got, want)
	}
	if got, want := d.TZString, "CET-1CEST,M3.5.0,M10.5.0/3"; got != want {
		t.Errorf("TZ string = %q, want %q", got, want)
	}

	// CET and CEST alternate, so two types suffice no matter how many
	// transitions there are.
	if len(d.Types) != 2 {
		t.Fatalf("%d local time types, want 2", len(d.Types))
	}
	names := map[string]int64{}
	for _, typ := range d.Types {
		names[d.Designation(typ)] = typ.UTOff
	}
	want := map[string]int64{"CET": 3600, "CEST": 7200}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("types mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tl := compileZone(t, euStyleSource, "Test/Europe")
	d, err := FromTimeline(tl)
	if err != nil {
		t.Fatalf("FromTimeline: %v", err)
	}

	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("TZif2")) {
		t.Fatalf("output does not start with a TZif v2 header: %q", buf.Bytes()[:8])
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(d, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "GZif2", "TZif", "TZif\x00"} {
		if _, err := Decode(strings.NewReader(in)); err == nil {
			t.Errorf("Decode(%q) did not fail", in)
		}
	}
}

func TestTZStringFor(t *testing.T) {
	t.Run("constant form", func(t *testing.T) {
		tl := compileZone(t, "Zone Asia/Tokio 9:00 - JST\n", "Asia/Tokio")
		if got, want := TZStringFor(tl), "JST-9"; got != want {
			t.Errorf("TZStringFor = %q, want %q", got, want)
		}
	})

	t.Run("numeric abbreviation is quoted", func(t *testing.T) {
		tl := compileZone(t, "Zone Test/Numeric -3:00 - %z\n", "Test/Numeric")
		if got, want := TZStringFor(tl), "<-03>3"; got != want {
			t.Errorf("TZStringFor = %q, want %q", got, want)
		}
	})

	t.Run("southern hemisphere ordering survives", func(t *testing.T) {
		tl := compileZone(t, `
Rule AN 1987 max - Oct Sun>=1 2:00s 1:00 D
Rule AN 1990 max - Apr Sun>=1 2:00s 0    S
Zone Test/Sydney 10:00 AN AE%sT
`, "Test/Sydney")
		if tl.Tail == nil {
			t.Fatal("no tail")
		}
		if got, want := TZStringFor(tl), "AEST-10AEDT,M10.1.0,M4.1.0/3"; got != want {
			t.Errorf("TZStringFor = %q, want %q", got, want)
		}
	})
}

func TestTZRuleForms(t *testing.T) {
	mk := func(month time.Month, day tzdata.Day, at tzdata.TimeOfDay) tzc.Recurrence {
		return tzc.Recurrence{Month: month, Day: day, Time: at, To: tzdata.MaxYear}
	}
	tests := []struct {
		name string
		r    tzc.Recurrence
		want string
		ok   bool
	}{
		{
			name: "last weekday",
			r:    mk(time.March, tzdata.NewDayLast(time.Sunday), tzdata.NewWallClock(2*time.Hour)),
			want: "M3.5.0", ok: true,
		},
		{
			name: "pinned week",
			r:    mk(time.October, tzdata.NewDayAfter(8, time.Sunday), tzdata.NewWallClock(2*time.Hour)),
			want: "M10.2.0", ok: true,
		},
		{
			name: "unpinned on-or-after is inexpressible",
			r:    mk(time.October, tzdata.NewDayAfter(5, time.Sunday), tzdata.NewWallClock(2*time.Hour)),
		},
		{
			name: "fixed day",
			r:    mk(time.March, tzdata.NewDayNum(21), tzdata.NewWallClock(0)),
			want: "J80/0", ok: true,
		},
		{
			name: "leap day is inexpressible",
			r:    mk(time.February, tzdata.NewDayNum(29), tzdata.NewWallClock(2*time.Hour)),
		},
		{
			name: "on-or-before is inexpressible",
			r:    mk(time.October, tzdata.NewDayBefore(25, time.Sunday), tzdata.NewWallClock(2*time.Hour)),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tzRule(tc.r, 0, 0)
			if ok != tc.ok {
				t.Fatalf("tzRule ok = %v, want %v", ok, tc.ok)
			}
			if got != tc.want {
				t.Errorf("tzRule = %q, want %q", got, tc.want)
			}
		})
	}
}
