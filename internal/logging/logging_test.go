// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, tc := range []struct {
		level string
		want  zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
	} {
		l, err := New(tc.level)
		if err != nil {
			t.Fatalf("New(%q): %v", tc.level, err)
		}
		if !l.Desugar().Core().Enabled(tc.want) {
			t.Errorf("New(%q): level %v disabled", tc.level, tc.want)
		}
		if tc.want > zapcore.DebugLevel && l.Desugar().Core().Enabled(tc.want-1) {
			t.Errorf("New(%q): level %v enabled", tc.level, tc.want-1)
		}
	}
	if _, err := New("loud"); err == nil {
		t.Errorf("New(loud): want error")
	}
}
