package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/zicgo/zic/tzc"
	"github.com/zicgo/zic/tzif"
	"github.com/zicgo/zic/tzsource"
)

var compileFlags struct {
	configPath string
	sources    []string
	out        string
	limitYear  int
	workers    int
}

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile tzdb sources into a TZif directory tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := compileConfig(cmd)
		if err != nil {
			return err
		}
		return runCompile(cfg)
	},
}

func init() {
	f := compileCmd.Flags()
	f.StringVarP(&compileFlags.configPath, "config", "c", "", "YAML configuration file")
	f.StringSliceVarP(&compileFlags.sources, "source", "s", nil, "tzdb source directory or release tarball (repeatable)")
	f.StringVarP(&compileFlags.out, "out", "o", "", "output directory")
	f.IntVar(&compileFlags.limitYear, "limit-year", 0, "last year to precompute transitions for")
	f.IntVar(&compileFlags.workers, "workers", 0, "number of zones compiled concurrently")
}

// compileConfig merges the configuration file with the flags, flags
// winning.
func compileConfig(cmd *cobra.Command) (config, error) {
	var cfg config
	if compileFlags.configPath != "" {
		var err error
		if cfg, err = loadConfig(compileFlags.configPath); err != nil {
			return cfg, err
		}
	}
	if cmd.Flags().Changed("source") {
		cfg.Sources = compileFlags.sources
	}
	if cmd.Flags().Changed("out") {
		cfg.Out = compileFlags.out
	}
	if cmd.Flags().Changed("limit-year") {
		cfg.LimitYear = compileFlags.limitYear
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = compileFlags.workers
	}
	if len(cfg.Sources) == 0 {
		return cfg, fmt.Errorf("no sources given; use --source or a configuration file")
	}
	if cfg.Out == "" {
		return cfg, fmt.Errorf("no output directory given; use --out or a configuration file")
	}
	return cfg, nil
}

func runCompile(cfg config) error {
	started := time.Now()

	var srcs []tzsource.Source
	for _, path := range cfg.Sources {
		src, err := openSource(path)
		if err != nil {
			return err
		}
		srcs = append(srcs, src)
	}
	db, err := tzsource.Load(srcs...)
	if err != nil {
		return err
	}
	slog.Info("loaded sources", "count", len(srcs), "version", db.Version(), "zones", len(db.Zones()))

	bc := tzc.DefaultConfig()
	if cfg.LimitYear != 0 {
		bc.LimitYear = cfg.LimitYear
	}
	if cfg.Workers != 0 {
		bc.Workers = cfg.Workers
	}
	timelines, err := tzc.CompileAll(db, bc)
	if err != nil {
		return err
	}

	written := 0
	for zone, tl := range timelines {
		d, err := tzif.FromTimeline(tl)
		if err != nil {
			return err
		}
		if err := writeTZif(cfg.Out, zone, d); err != nil {
			return err
		}
		written++
		slog.Debug("wrote zone", "zone", zone, "transitions", len(d.TransitionTimes))
	}
	for alias := range db.Aliases() {
		canonical, err := db.Canonical(alias)
		if err != nil {
			return err
		}
		d, err := tzif.FromTimeline(timelines[canonical])
		if err != nil {
			return err
		}
		if err := writeTZif(cfg.Out, alias, d); err != nil {
			return err
		}
		written++
		slog.Debug("wrote alias", "alias", alias, "target", canonical)
	}

	slog.Info("compiled", "zones", len(timelines), "files", written, "elapsed", time.Since(started))
	return nil
}

func openSource(path string) (tzsource.Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return tzsource.OpenDir(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tzsource.ReadArchive(f)
}

func writeTZif(out, zone string, d tzif.Data) error {
	path := filepath.Join(out, filepath.FromSlash(zone))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := d.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
