package main

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// config is the YAML configuration of the compile command. Flags
// override whatever the file sets.
type config struct {
	// Sources are tzdb source paths, each either a directory of data
	// files or a release tarball.
	Sources []string `yaml:"sources"`
	// Out is the directory the TZif tree is written into.
	Out string `yaml:"out"`
	// LimitYear bounds transition precomputation.
	LimitYear int `yaml:"limit_year"`
	// Workers is the number of zones compiled concurrently.
	Workers int `yaml:"workers"`
}

func loadConfig(path string) (config, error) {
	var c config
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return c, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}
