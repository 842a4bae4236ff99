// Package tzsource provides access to the text files of a tzdb
// release, whether they sit in a local directory, in a release archive
// or on the IANA data server, and loads them into a compilable
// database.
package tzsource

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/zicgo/zic/tzc"
	"github.com/zicgo/zic/tzdata"
)

// The files of a release are identified by content, not by a fixed
// name list: every data file starts with one of two magic comments,
// depending on whether it holds zones or backward-compatibility links.
const (
	dataFileMagic   = "# tzdb data for"
	linkFileMagic   = "# tzdb links for"
	leapSecondsName = "leapseconds"
	versionFileName = "version"
)

func hasFileMagic(b []byte) bool {
	return bytes.HasPrefix(b, []byte(dataFileMagic)) ||
		bytes.HasPrefix(b, []byte(linkFileMagic))
}

// Source is a set of tzdb text files from one release.
type Source interface {
	// Version returns the release tag, e.g. "2024a", or "" if the
	// source does not carry one.
	Version() string
	// Names returns the data file names in sorted order. The leap
	// seconds file is included when present.
	Names() []string
	// Open opens one file by name.
	Open(name string) (io.ReadCloser, error)
}

// Load parses every file of the given sources into a fresh database.
// The release version is taken from the first source that carries one.
func Load(sources ...Source) (*tzc.Database, error) {
	db := tzc.NewDatabase()
	for _, src := range sources {
		if db.Version() == "" {
			db.SetVersion(src.Version())
		}
		for _, name := range src.Names() {
			if err := loadFile(db, src, name); err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
		}
	}
	return db, nil
}

func loadFile(db *tzc.Database, src Source, name string) error {
	r, err := src.Open(name)
	if err != nil {
		return err
	}
	defer r.Close()

	f, err := tzdata.Parse(r)
	if err != nil {
		return err
	}
	return db.Add(f)
}

func sortedNames(m map[string][]byte) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
