package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Placeholder marker prefixes. Ordinal and named tokens must never collide
// lexically: compilation and subquery merging scan the raw token stream and
// rely on the prefix alone to classify a token.
const (
	ordinalMarker = "$$"
	namedMarker   = "$?"
)

// ordinalToken renders the reference token for the n-th ordinal placeholder
// (1-based display numbering).
func ordinalToken(n int) string {
	return ordinalMarker + strconv.Itoa(n)
}

// namedToken renders the reference token for a caller-chosen reference.
func namedToken(reference any) string {
	return fmt.Sprintf("%s%v", namedMarker, reference)
}

// isPlaceholder reports whether a raw token is any placeholder marker.
func isPlaceholder(token string) bool {
	return strings.HasPrefix(token, ordinalMarker) || strings.HasPrefix(token, namedMarker)
}

// isOrdinalPlaceholder reports whether a raw token is an ordinal marker.
func isOrdinalPlaceholder(token string) bool {
	return strings.HasPrefix(token, ordinalMarker)
}

// shiftOrdinalToken renumbers an ordinal marker token by the given offset.
func shiftOrdinalToken(token string, offset int) string {
	n, err := strconv.Atoi(strings.TrimPrefix(token, ordinalMarker))
	if err != nil {
		// Not a well-formed ordinal token; leave it untouched.
		return token
	}
	return ordinalToken(n + offset)
}

// paramTable tracks placeholder slots and their injected values.
//
// Every placeholder call allocates one slot at the next index (0-based,
// assignment order = call order). A reference token (ordinal or named) maps
// to one or more slot indices: reusing a reference binds a single injected
// value to all of its slots at compile time. Injection entries hold the
// value's string form, or nil while unset.
type paramTable struct {
	count      int
	ordinal    int
	injections []any
	references map[string][]int
}

func newParamTable() *paramTable {
	return &paramTable{
		references: make(map[string][]int),
	}
}

// addSlot allocates the next slot under the given reference token and
// returns the token for appending to the clause stream.
func (t *paramTable) addSlot(reference string) string {
	t.injections = append(t.injections, nil)
	t.references[reference] = append(t.references[reference], t.count)
	t.count++
	return reference
}

// set writes the value's string form into every slot bound to the reference.
func (t *paramTable) set(reference string, value any) error {
	positions, ok := t.references[reference]
	if !ok {
		return WrapError(ErrReferenceNotFound, "reference "+prettify(reference))
	}
	for _, pos := range positions {
		t.injections[pos] = fmt.Sprint(value)
	}
	return nil
}

// setPositional clears all injections and assigns values[i] to slot i.
// Supplying fewer values than slots leaves the tail unset; supplying more
// than the slot count is an error. The bound check runs before the clear so
// a failed call keeps the previous injections.
func (t *paramTable) setPositional(values ...any) error {
	if len(values) > t.count {
		return WrapError(ErrTooManyValues, fmt.Sprintf("%d values for %d slots", len(values), t.count))
	}
	t.clear()
	for i, v := range values {
		t.injections[i] = fmt.Sprint(v)
	}
	return nil
}

// clear resets every slot's injected value to unset without touching the
// slot or reference structure.
func (t *paramTable) clear() {
	for i := range t.injections {
		t.injections[i] = nil
	}
}
