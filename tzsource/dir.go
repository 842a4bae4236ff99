package tzsource

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Dir is a release checked out or unpacked into a local directory, as
// produced by "make tzdata" or a plain archive extraction.
type Dir struct {
	path    string
	version string
	names   []string
}

var _ Source = (*Dir)(nil)

// OpenDir scans a directory for tzdb data files, identified by their
// magic comment, and reads the version file if one is present.
func OpenDir(path string) (*Dir, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	d := &Dir{path: path}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		switch name {
		case versionFileName:
			b, err := os.ReadFile(filepath.Join(path, name))
			if err != nil {
				return nil, err
			}
			d.version = strings.TrimSpace(string(b))
			continue
		case leapSecondsName:
			d.names = append(d.names, name)
			continue
		}
		ok, err := fileHasMagic(filepath.Join(path, name))
		if err != nil {
			return nil, err
		}
		if ok {
			d.names = append(d.names, name)
		}
	}
	if len(d.names) == 0 {
		return nil, fmt.Errorf("no tzdb data files in %s", path)
	}
	sort.Strings(d.names)
	return d, nil
}

func fileHasMagic(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, len(linkFileMagic))
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return hasFileMagic(buf[:n]), nil
}

func (d *Dir) Version() string { return d.version }

func (d *Dir) Names() []string {
	names := make([]string, len(d.names))
	copy(names, d.names)
	return names
}

func (d *Dir) Open(name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(d.path, name))
}
