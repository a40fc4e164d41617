// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

import "strings"

// mergeSubquery imports a fully-built child builder into b and returns the
// child's raw text, renumbered into b's parameter space. The caller wraps
// the result in parentheses and applies an alias (SubQuery, CTE, Exists,
// InQuery).
//
// The import is a one-shot snapshot: all reference and injection data is
// copied, so mutating the child afterwards never reaches the parent and the
// child stays independently usable.
//
// Renumbering rules:
//   - every ordinal marker token in the child's raw text is shifted by the
//     parent's current ordinal counter;
//   - child slot indices are shifted by the parent's current slot count;
//   - ordinal reference tokens are shifted like their markers; named
//     reference tokens are copied verbatim. A named reference present in
//     both parent and child therefore merges: one injected value fans out
//     to the slots on both sides. Intended sharing, not a collision error.
func (b *Builder) mergeSubquery(child *Builder) string {
	raw := child.rawStatement()

	if child.params == nil || child.params.count == 0 {
		return raw
	}
	if b.params == nil {
		b.params = newParamTable()
	}

	parts := strings.Split(raw, " ")
	for i, part := range parts {
		if isOrdinalPlaceholder(part) {
			parts[i] = shiftOrdinalToken(part, b.params.ordinal)
		}
	}

	for reference, positions := range child.params.references {
		shifted := make([]int, len(positions))
		for i, pos := range positions {
			shifted[i] = pos + b.params.count
		}
		if isOrdinalPlaceholder(reference) {
			reference = shiftOrdinalToken(reference, b.params.ordinal)
		}
		b.params.references[reference] = append(b.params.references[reference], shifted...)
	}

	b.params.injections = append(b.params.injections, child.params.injections...)
	b.params.count += child.params.count
	b.params.ordinal += child.params.ordinal

	return strings.Join(parts, " ")
}
