// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hostinfo describes the machine ompplot runs on.
package hostinfo

import (
	"runtime"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
)

// Info is the host description recorded with each run.
type Info struct {
	Arch     string
	Hostname string
	Platform string
	// CPUs is the number of logical CPUs, or 0 if unknown.
	CPUs int
}

// Stat collects Info. Fields that cannot be determined are left
// empty.
func Stat() Info {
	info := Info{Arch: runtime.GOARCH}
	if h, err := host.Info(); err == nil {
		info.Hostname = h.Hostname
		info.Platform = h.Platform
	}
	if n, err := cpu.Counts(true); err == nil {
		info.CPUs = n
	}
	return info
}

// IdealSpeedup returns the speedup to draw as the ideal reference
// line: the configured value if positive, else the host's logical
// CPU count, else 2.
func IdealSpeedup(configured float64, info Info) float64 {
	switch {
	case configured > 0:
		return configured
	case info.CPUs > 0:
		return float64(info.CPUs)
	}
	return 2
}
