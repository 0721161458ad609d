// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measproc

// NonSingularFields returns the subset of Fields for which at least
// two of keys have different values.
//
// This warns that aggregating a set of rows may have hidden a
// configuration difference. Typically keys are residue keys from
// ProjectionParser.Residue.
func NonSingularFields(keys []Key) []*Field {
	if len(keys) <= 1 {
		return nil
	}
	var out []*Field
	for _, f := range commonProjection(keys).FlattenedFields() {
		base := keys[0].Get(f)
		for _, k := range keys[1:] {
			if k.Get(f) != base {
				out = append(out, f)
				break
			}
		}
	}
	return out
}
