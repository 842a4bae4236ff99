package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zicgo/zic/tzsource"
)

var fetchFlags struct {
	out      string
	etagFile string
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the latest tzdb release from IANA",
	Long: `Download the latest tzdb release and unpack its data files into a
directory that can be passed to "zic compile --source". An ETag file
avoids downloading a release that has not changed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var etag string
		if fetchFlags.etagFile != "" {
			if b, err := os.ReadFile(fetchFlags.etagFile); err == nil {
				etag = strings.TrimSpace(string(b))
			}
		}

		a, newEtag, err := tzsource.Latest(cmd.Context(), etag)
		if err != nil {
			return err
		}
		if a == nil {
			slog.Info("already up to date", "etag", etag)
			return nil
		}

		if err := os.MkdirAll(fetchFlags.out, 0o755); err != nil {
			return err
		}
		for _, name := range a.Names() {
			if err := copySourceFile(a, name, fetchFlags.out); err != nil {
				return err
			}
		}
		version := filepath.Join(fetchFlags.out, "version")
		if err := os.WriteFile(version, []byte(a.Version()+"\n"), 0o644); err != nil {
			return err
		}
		if fetchFlags.etagFile != "" && newEtag != "" {
			if err := os.WriteFile(fetchFlags.etagFile, []byte(newEtag+"\n"), 0o644); err != nil {
				return err
			}
		}
		slog.Info("fetched release", "version", a.Version(), "files", len(a.Names()))
		return nil
	},
}

func init() {
	f := fetchCmd.Flags()
	f.StringVarP(&fetchFlags.out, "out", "o", "", "directory to unpack the release into")
	f.StringVar(&fetchFlags.etagFile, "etag-file", "", "file to store the release ETag in")
	if err := fetchCmd.MarkFlagRequired("out"); err != nil {
		panic(err)
	}
}

func copySourceFile(src tzsource.Source, name, out string) error {
	r, err := src.Open(name)
	if err != nil {
		return err
	}
	defer r.Close()

	f, err := os.Create(filepath.Join(out, name))
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	return f.Close()
}
