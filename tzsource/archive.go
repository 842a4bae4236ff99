package tzsource

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"
)

// Archive is a release unpacked from the gzip-compressed tar archives
// published at https://data.iana.org/time-zones/releases/.
type Archive struct {
	version string
	files   map[string][]byte
}

var _ Source = (*Archive)(nil)

// ReadArchive unpacks a release archive. Files are classified by
// content: anything starting with a tzdb magic comment is a data file,
// plus the leap seconds file; build scripts and documentation in the
// same archive are skipped.
func ReadArchive(r io.Reader) (*Archive, error) {
	gunzip, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("read gzip: %w", err)
	}
	tr := tar.NewReader(gunzip)

	a := &Archive{files: make(map[string][]byte)}
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		switch header.Name {
		case versionFileName:
			b, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("read version file: %w", err)
			}
			a.version = strings.TrimSpace(string(b))
			continue
		case leapSecondsName:
			b, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("read leap seconds file: %w", err)
			}
			a.files[leapSecondsName] = b
			continue
		}

		b, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", header.Name, err)
		}
		if hasFileMagic(b) {
			a.files[header.Name] = b
		}
	}

	if len(a.files) == 0 {
		return nil, fmt.Errorf("no data files in archive")
	}
	if a.version == "" {
		return nil, fmt.Errorf("no version file in archive")
	}
	return a, nil
}

func (a *Archive) Version() string { return a.version }

func (a *Archive) Names() []string { return sortedNames(a.files) }

func (a *Archive) Open(name string) (io.ReadCloser, error) {
	b, ok := a.files[name]
	if !ok {
		return nil, fmt.Errorf("no file %q in archive", name)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}
