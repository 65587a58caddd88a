package runtimeval

import "reflect"

// Mapping is implemented by runtime values that can serve as the source
// of a "**" or keyword-shaped "..." spread (spec §9). *Dict satisfies
// this directly; anything else is adapted via reflection in AsMapping.
// Keyword names emitted from a mapping spread must stringify to a
// string (EmitSpreadKeyword only makes sense over string-keyed data);
// non-string keys are reported as a spread type error at the call site.
type Mapping interface {
	Range(func(key, value any) bool)
}

// Iterable is implemented by runtime values that can serve as the
// source of a "*" or positional-shaped "..." spread (spec §9).
type Iterable interface {
	Each(func(value any) bool)
}

// AsMapping adapts v to the Mapping contract: v's own Range method if it
// already implements Mapping, otherwise any Go map via reflection.
func AsMapping(v any) (Mapping, bool) {
	if v == nil {
		return nil, false
	}
	if m, ok := v.(Mapping); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	return reflectMapping{rv}, true
}

// AsIterable adapts v to the Iterable contract: v's own Each method if
// it already implements Iterable, otherwise a slice or array via
// reflection. A string is deliberately NOT treated as iterable — a
// bare string passed to "...name" is overwhelmingly a single scalar
// argument in this grammar's call shape, not a sequence the caller
// meant to explode rune-by-rune.
func AsIterable(v any) (Iterable, bool) {
	if v == nil {
		return nil, false
	}
	if it, ok := v.(Iterable); ok {
		return it, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return reflectIterable{rv}, true
	default:
		return nil, false
	}
}

type reflectMapping struct{ rv reflect.Value }

func (r reflectMapping) Range(fn func(key, value any) bool) {
	iter := r.rv.MapRange()
	for iter.Next() {
		if !fn(iter.Key().Interface(), iter.Value().Interface()) {
			return
		}
	}
}

type reflectIterable struct{ rv reflect.Value }

func (r reflectIterable) Each(fn func(value any) bool) {
	for i := 0; i < r.rv.Len(); i++ {
		if !fn(r.rv.Index(i).Interface()) {
			return
		}
	}
}
