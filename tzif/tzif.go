// Package tzif reads and writes version 2 TZif files, the binary
// format consumed by libc and time.LoadLocation, as specified by
// RFC 8536.
package tzif

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/zicgo/zic/tzc"
)

const magic = "TZif"

// ErrBadFormat reports input that is not a TZif file this package can
// read.
var ErrBadFormat = errors.New("bad TZif data")

// LocalTimeType is one entry of the local time type table: a total
// offset from UT, a DST flag, and an index into the designation
// string.
type LocalTimeType struct {
	UTOff int64
	DST   bool
	Idx   uint8
}

// Data is the logical content of a TZif file.
type Data struct {
	// TransitionTimes and TransitionTypes run in parallel, sorted by
	// time: at TransitionTimes[i] the zone switches to
	// Types[TransitionTypes[i]].
	TransitionTimes []int64
	TransitionTypes []uint8
	Types           []LocalTimeType
	// Designations is the concatenated, NUL-terminated abbreviation
	// pool that LocalTimeType.Idx points into.
	Designations string
	// TZString extends the data past the last transition, or describes
	// the whole zone if there are no transitions. May be empty.
	TZString string
}

// Designation returns the abbreviation of a local time type.
func (d Data) Designation(t LocalTimeType) string {
	s := d.Designations[t.Idx:]
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return s
}

// FromTimeline converts a compiled timeline into TZif content. The
// first interval becomes the zero transition-count prelude; every
// later interval contributes one transition.
func FromTimeline(tl tzc.Timeline) (Data, error) {
	var d Data
	var pool designationPool

	typeIdx := func(iv tzc.ZoneInterval) (uint8, error) {
		idx, err := pool.add(iv.Name)
		if err != nil {
			return 0, fmt.Errorf("zone %s: %w", tl.Zone, err)
		}
		t := LocalTimeType{
			UTOff: int64(iv.WallOffset() / time.Second),
			DST:   iv.Save != 0,
			Idx:   idx,
		}
		for i, have := range d.Types {
			if have == t {
				return uint8(i), nil
			}
		}
		if len(d.Types) > math.MaxUint8 {
			return 0, fmt.Errorf("zone %s: more than %d local time types", tl.Zone, math.MaxUint8+1)
		}
		d.Types = append(d.Types, t)
		return uint8(len(d.Types) - 1), nil
	}

	for i, iv := range tl.Intervals {
		ti, err := typeIdx(iv)
		if err != nil {
			return Data{}, err
		}
		if i == 0 {
			continue // state before the first transition
		}
		d.TransitionTimes = append(d.TransitionTimes, int64(iv.Start))
		d.TransitionTypes = append(d.TransitionTypes, ti)
	}
	d.Designations = pool.String()
	d.TZString = TZStringFor(tl)
	return d, nil
}

// designationPool interns abbreviations into the NUL-terminated pool,
// reusing suffixes the way zic does ("EST" inside "AEST").
type designationPool struct {
	b strings.Builder
}

func (p *designationPool) add(name string) (uint8, error) {
	if strings.IndexByte(name, 0) >= 0 {
		return 0, fmt.Errorf("designation %q contains NUL", name)
	}
	if i := strings.Index(p.b.String(), name+"\x00"); i >= 0 {
		return uint8(i), nil
	}
	idx := p.b.Len()
	if idx+len(name)+1 > math.MaxUint8+1 {
		return 0, fmt.Errorf("designation pool overflow adding %q", name)
	}
	p.b.WriteString(name)
	p.b.WriteByte(0)
	return uint8(idx), nil
}

func (p *designationPool) String() string { return p.b.String() }

type header struct {
	version  byte
	isutcnt  uint32
	isstdcnt uint32
	leapcnt  uint32
	timecnt  uint32
	typecnt  uint32
	charcnt  uint32
}

func (h header) write(w io.Writer) error {
	buf := make([]byte, 44)
	copy(buf, magic)
	buf[4] = h.version
	for i, v := range []uint32{h.isutcnt, h.isstdcnt, h.leapcnt, h.timecnt, h.typecnt, h.charcnt} {
		binary.BigEndian.PutUint32(buf[20+4*i:], v)
	}
	_, err := w.Write(buf)
	return err
}

func readHeader(r io.Reader) (header, error) {
	buf := make([]byte, 44)
	if _, err := io.ReadFull(r, buf); err != nil {
		return header{}, err
	}
	if string(buf[:4]) != magic {
		return header{}, fmt.Errorf("%w: bad magic", ErrBadFormat)
	}
	h := header{version: buf[4]}
	for i, p := range []*uint32{&h.isutcnt, &h.isstdcnt, &h.leapcnt, &h.timecnt, &h.typecnt, &h.charcnt} {
		*p = binary.BigEndian.Uint32(buf[20+4*i:])
	}
	return h, nil
}

// Encode writes d as a version 2 TZif file: a version 1 block with
// 32-bit transition times for old readers, the full 64-bit block, and
// the TZ string footer. Transitions outside the 32-bit range are
// omitted from the version 1 block.
func (d Data) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)

	var v1times []int64
	var v1types []uint8
	for i, t := range d.TransitionTimes {
		if t < math.MinInt32 || t > math.MaxInt32 {
			continue
		}
		v1times = append(v1times, t)
		v1types = append(v1types, d.TransitionTypes[i])
	}
	if err := d.encodeBlock(bw, v1times, v1types, 4); err != nil {
		return err
	}
	if err := d.encodeBlock(bw, d.TransitionTimes, d.TransitionTypes, 8); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(bw, "\n%s\n", d.TZString); err != nil {
		return err
	}
	return bw.Flush()
}

func (d Data) encodeBlock(w io.Writer, times []int64, types []uint8, timeSize int) error {
	h := header{
		version: '2',
		timecnt: uint32(len(times)),
		typecnt: uint32(len(d.Types)),
		charcnt: uint32(len(d.Designations)),
	}
	if err := h.write(w); err != nil {
		return err
	}
	for _, t := range times {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(t))
		if _, err := w.Write(buf[8-timeSize:]); err != nil {
			return err
		}
	}
	if len(types) > 0 {
		if _, err := w.Write(types); err != nil {
			return err
		}
	}
	for _, t := range d.Types {
		var buf [6]byte
		binary.BigEndian.PutUint32(buf[:], uint32(t.UTOff))
		if t.DST {
			buf[4] = 1
		}
		buf[5] = t.Idx
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, d.Designations)
	return err
}

// Decode reads a version 2 or 3 TZif file, returning the content of
// its 64-bit block and footer. Version 1 files are rejected: nothing
// this compiler produces or consumes is that old.
func Decode(r io.Reader) (Data, error) {
	h, err := readHeader(r)
	if err != nil {
		return Data{}, err
	}
	if h.version < '2' {
		return Data{}, fmt.Errorf("%w: version %q", ErrBadFormat, h.version)
	}
	// Skip the 32-bit compatibility block.
	skip := int64(h.timecnt)*5 + int64(h.typecnt)*6 + int64(h.charcnt) +
		int64(h.leapcnt)*8 + int64(h.isstdcnt) + int64(h.isutcnt)
	if _, err := io.CopyN(io.Discard, r, skip); err != nil {
		return Data{}, fmt.Errorf("%w: truncated v1 block", ErrBadFormat)
	}

	if h, err = readHeader(r); err != nil {
		return Data{}, err
	}
	var d Data
	buf := make([]byte, 8)
	for i := uint32(0); i < h.timecnt; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return Data{}, fmt.Errorf("%w: transition times", ErrBadFormat)
		}
		d.TransitionTimes = append(d.TransitionTimes, int64(binary.BigEndian.Uint64(buf)))
	}
	d.TransitionTypes = make([]uint8, h.timecnt)
	if _, err := io.ReadFull(r, d.TransitionTypes); err != nil {
		return Data{}, fmt.Errorf("%w: transition types", ErrBadFormat)
	}
	for i := uint32(0); i < h.typecnt; i++ {
		if _, err := io.ReadFull(r, buf[:6]); err != nil {
			return Data{}, fmt.Errorf("%w: local time types", ErrBadFormat)
		}
		d.Types = append(d.Types, LocalTimeType{
			UTOff: int64(int32(binary.BigEndian.Uint32(buf))),
			DST:   buf[4] != 0,
			Idx:   buf[5],
		})
	}
	chars := make([]byte, h.charcnt)
	if _, err := io.ReadFull(r, chars); err != nil {
		return Data{}, fmt.Errorf("%w: designations", ErrBadFormat)
	}
	d.Designations = string(chars)

	// Leap records and the std/UT indicator arrays are not produced by
	// this package; skip whatever a foreign writer included.
	skip = int64(h.leapcnt)*12 + int64(h.isstdcnt) + int64(h.isutcnt)
	if _, err := io.CopyN(io.Discard, r, skip); err != nil {
		return Data{}, fmt.Errorf("%w: truncated v2 block", ErrBadFormat)
	}

	footer, err := io.ReadAll(r)
	if err != nil {
		return Data{}, err
	}
	s := string(footer)
	if !strings.HasPrefix(s, "\n") {
		return Data{}, fmt.Errorf("%w: missing footer", ErrBadFormat)
	}
	s = strings.TrimPrefix(s, "\n")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	d.TZString = s
	return d, nil
}

// Validate performs the structural checks a reader relies on.
func (d Data) Validate() error {
	if len(d.TransitionTimes) != len(d.TransitionTypes) {
		return fmt.Errorf("%w: %d times but %d types", ErrBadFormat,
			len(d.TransitionTimes), len(d.TransitionTypes))
	}
	for i := 1; i < len(d.TransitionTimes); i++ {
		if d.TransitionTimes[i] <= d.TransitionTimes[i-1] {
			return fmt.Errorf("%w: transitions not strictly increasing at %d", ErrBadFormat, i)
		}
	}
	for _, ti := range d.TransitionTypes {
		if int(ti) >= len(d.Types) {
			return fmt.Errorf("%w: transition type %d out of range", ErrBadFormat, ti)
		}
	}
	for _, t := range d.Types {
		if int(t.Idx) >= len(d.Designations) {
			return fmt.Errorf("%w: designation index %d out of range", ErrBadFormat, t.Idx)
		}
	}
	if len(d.Types) == 0 {
		return fmt.Errorf("%w: no local time types", ErrBadFormat)
	}
	return nil
}
