// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config reads the ompplot settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ompbench/ompplot/chart"
)

// DefaultRegionFilter selects the region-benchmark configuration
// that the summary charts describe.
const DefaultRegionFilter = "N:1000000 K:20 B:256"

// Config holds the ompplot settings.
type Config struct {
	InputDir  string
	OutputDir string
	Format    chart.Format
	DPI       int

	// IdealSpeedup is the height of the ideal reference line. Zero
	// means use the host's CPU count.
	IdealSpeedup float64

	// Require lists analysis IDs whose input must exist.
	Require []string

	RegionFilter string

	WriteCSV    bool
	WriteReport bool

	ArchiveDriver string
	ArchiveDSN    string

	GCSBucket string
	GCSPrefix string

	LogLevel string
}

// Load reads an optional .env file from the working directory and
// then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv reads the settings from the environment alone.
func FromEnv() (*Config, error) {
	var e envReader
	c := &Config{
		InputDir:      e.stringEnv("OMPPLOT_INPUT_DIR", "."),
		OutputDir:     e.stringEnv("OMPPLOT_OUTPUT_DIR", "imagens"),
		DPI:           e.intEnv("OMPPLOT_DPI", 96),
		IdealSpeedup:  e.floatEnv("OMPPLOT_IDEAL_SPEEDUP", 0),
		Require:       e.listEnv("OMPPLOT_REQUIRE"),
		RegionFilter:  e.stringEnv("OMPPLOT_REGION_FILTER", DefaultRegionFilter),
		WriteCSV:      e.boolEnv("OMPPLOT_CSV", true),
		WriteReport:   e.boolEnv("OMPPLOT_REPORT", true),
		ArchiveDriver: e.stringEnv("OMPPLOT_ARCHIVE_DRIVER", ""),
		ArchiveDSN:    e.stringEnv("OMPPLOT_ARCHIVE_DSN", ""),
		GCSBucket:     e.stringEnv("OMPPLOT_GCS_BUCKET", ""),
		GCSPrefix:     e.stringEnv("OMPPLOT_GCS_PREFIX", ""),
		LogLevel:      e.stringEnv("LOG_LEVEL", "info"),
	}
	format, err := chart.ParseFormat(e.stringEnv("OMPPLOT_FORMAT", "png"))
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("OMPPLOT_FORMAT: %w", err))
	}
	c.Format = format
	if c.DPI <= 0 {
		e.errs = append(e.errs, fmt.Errorf("OMPPLOT_DPI: must be positive, got %d", c.DPI))
	}
	if c.ArchiveDriver != "" && c.ArchiveDSN == "" {
		e.errs = append(e.errs, fmt.Errorf("OMPPLOT_ARCHIVE_DSN must be set with OMPPLOT_ARCHIVE_DRIVER"))
	}
	if err := errors.Join(e.errs...); err != nil {
		return nil, err
	}
	return c, nil
}

// Required reports whether analysis id is listed in c.Require.
func (c *Config) Required(id string) bool {
	for _, r := range c.Require {
		if strings.EqualFold(r, id) {
			return true
		}
	}
	return false
}

// envReader reads typed variables and collects parse errors.
type envReader struct {
	errs []error
}

func (e *envReader) stringEnv(key, def string) string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func (e *envReader) intEnv(key string, def int) int {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return def
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return parsed
}

func (e *envReader) floatEnv(key string, def float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return parsed
}

func (e *envReader) boolEnv(key string, def bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return def
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return parsed
}

func (e *envReader) listEnv(key string) []string {
	var out []string
	for _, f := range strings.Split(e.stringEnv(key, ""), ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
