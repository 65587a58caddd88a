// Package runtimeval holds the few runtime value helpers the compiler
// needs that have no natural home in internal/ast or internal/compiler:
// the ordered Dict type produced by BuildDict, and the reflection-based
// "mapping"/"iterable" contracts a spread target must satisfy (spec §9).
package runtimeval

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Dict is the runtime value a BuildDict step produces. A dict key is
// itself a resolved Value (§3: "dict_key := value"), almost always a
// string in practice but not restricted to one, so the key type is
// `any`, not `string`; Go's map type has neither an insertion-order nor
// a deterministic iteration guarantee, so a dict literal's
// last-write-wins, order-preserving semantics (spec §4.4 BuildDict) are
// backed by an ordered map from the wider Go ecosystem instead.
type Dict struct {
	m *orderedmap.OrderedMap[any, any]
}

// NewDict returns an empty, ready-to-use Dict.
func NewDict() *Dict {
	return &Dict{m: orderedmap.New[any, any]()}
}

// Set inserts or overwrites key. A repeated key keeps its original
// position and takes the new value (last-write-wins, per BuildDict).
func (d *Dict) Set(key, value any) {
	d.m.Set(key, value)
}

// Get returns the value stored at key, if any.
func (d *Dict) Get(key any) (any, bool) {
	return d.m.Get(key)
}

// Len returns the number of distinct keys.
func (d *Dict) Len() int {
	return d.m.Len()
}

// Merge copies every entry of other into d in other's iteration order,
// overwriting any key already present (used by "**spread" dict items).
func (d *Dict) Merge(other *Dict) {
	if other == nil {
		return
	}
	for pair := other.m.Oldest(); pair != nil; pair = pair.Next() {
		d.m.Set(pair.Key, pair.Value)
	}
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []any {
	keys := make([]any, 0, d.m.Len())
	for pair := d.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Range calls fn for every (key, value) pair in insertion order, and
// stops early if fn returns false.
func (d *Dict) Range(fn func(key, value any) bool) {
	for pair := d.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

func (d *Dict) String() string {
	return fmt.Sprintf("Dict(len=%d)", d.Len())
}
