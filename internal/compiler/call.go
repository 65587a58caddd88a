// Package compiler lowers a validated *ast.Tag into a CompiledCall: a
// reusable, immutable plan that, given a context and four resolution
// callbacks, produces the positional and keyword arguments a downstream
// handler expects (spec §4.4).
package compiler

import (
	"github.com/nyquen/tagcall/internal/ast"
	"github.com/nyquen/tagcall/internal/runtimeval"
)

// Callbacks is the caller's resolution bundle (spec §4.2, §9). It is
// passed to Invoke rather than stored on CompiledCall, because the same
// compiled plan may be invoked with different callback bundles.
type Callbacks struct {
	Variable       func(ctx any, name string) (any, error)
	TemplateString func(ctx any, inner string) (any, error)
	Translation    func(ctx any, inner string) (any, error)
	Filter         func(ctx any, name string, value, arg any) (any, error)
}

// KV is one keyword argument. The keyword buffer is a slice of these,
// not a map, because duplicate keys and declaration order are both
// observable and required by downstream consumers (spec §9).
type KV struct {
	Name  string
	Value any
}

// emitKind names the final operation an attribute's compiled steps feed
// into once its value is fully computed.
type emitKind int

const (
	emitArg emitKind = iota
	emitKwarg
	emitSpreadPositional
	emitSpreadKeyword
	emitSpreadAmbiguous
)

// attrPlan is one non-flag attribute's compiled evaluation plan.
type attrPlan struct {
	steps   []step
	emit    emitKind
	keyName string // only set when emit == emitKwarg
	span    ast.Span
}

// CompiledCall is the immutable output of Compile. It may be invoked any
// number of times, concurrently, with independent contexts and
// callback bundles (spec §5).
type CompiledCall struct {
	plans []attrPlan
}

type execState struct {
	ctx   any
	cb    Callbacks
	stack []any
}

func (s *execState) push(v any) { s.stack = append(s.stack, v) }

func (s *execState) pop() any {
	n := len(s.stack) - 1
	v := s.stack[n]
	s.stack = s.stack[:n]
	return v
}

func (s *execState) popN(n int) ([]any, error) {
	if n == 0 {
		return nil, nil
	}
	top := len(s.stack) - n
	items := append([]any(nil), s.stack[top:]...)
	s.stack = s.stack[:top]
	return items, nil
}

// Invoke runs every attribute's plan in source order and assembles the
// positional and keyword argument lists (spec §6, §4.4). Variable
// resolution is never memoized: a repeated ResolveVar step re-invokes
// cb.Variable every time it runs, preserving observable side effects.
func (c *CompiledCall) Invoke(ctx any, cb Callbacks) ([]any, []KV, error) {
	args := make([]any, 0, len(c.plans))
	kwargs := make([]KV, 0, len(c.plans))
	sawKeyword := false
	var keyErr error

	for _, p := range c.plans {
		st := &execState{ctx: ctx, cb: cb}
		for _, step := range p.steps {
			if err := step.exec(st); err != nil {
				return nil, nil, err
			}
		}
		val := st.pop()

		switch p.emit {
		case emitArg:
			if sawKeyword {
				return nil, nil, OrderError{Span: p.span}
			}
			args = append(args, val)

		case emitKwarg:
			sawKeyword = true
			kwargs = append(kwargs, KV{Name: p.keyName, Value: val})

		case emitSpreadPositional:
			if sawKeyword {
				return nil, nil, OrderError{Span: p.span}
			}
			it, ok := runtimeval.AsIterable(val)
			if !ok {
				return nil, nil, newSpreadTypeError("iterable", val)
			}
			it.Each(func(v any) bool { args = append(args, v); return true })

		case emitSpreadKeyword:
			sawKeyword = true
			m, ok := runtimeval.AsMapping(val)
			if !ok {
				return nil, nil, newSpreadTypeError("mapping", val)
			}
			m.Range(func(k, v any) bool {
				name, ok := k.(string)
				if !ok {
					keyErr = newSpreadTypeError("string", k)
					return false
				}
				kwargs = append(kwargs, KV{Name: name, Value: v})
				return true
			})
			if keyErr != nil {
				return nil, nil, keyErr
			}

		case emitSpreadAmbiguous:
			if m, ok := runtimeval.AsMapping(val); ok {
				sawKeyword = true
				m.Range(func(k, v any) bool {
					name, ok := k.(string)
					if !ok {
						keyErr = newSpreadTypeError("string", k)
						return false
					}
					kwargs = append(kwargs, KV{Name: name, Value: v})
					return true
				})
				if keyErr != nil {
					return nil, nil, keyErr
				}
				continue
			}
			if it, ok := runtimeval.AsIterable(val); ok {
				if sawKeyword {
					return nil, nil, OrderError{Span: p.span}
				}
				it.Each(func(v any) bool { args = append(args, v); return true })
				continue
			}
			return nil, nil, newSpreadTypeError("mapping or iterable", val)
		}
	}

	return args, kwargs, nil
}
