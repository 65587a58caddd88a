package compiler

import "github.com/nyquen/tagcall/internal/runtimeval"

// step is one instruction in a compiled attribute's evaluation plan
// (spec §4.4). Steps run against a stack-based execState: every step
// pushes exactly one value, except applyFilter and the two builders,
// which pop their operands first.
type step interface {
	exec(s *execState) error
}

type litString struct{ value string }

func (st litString) exec(s *execState) error { s.push(st.value); return nil }

type litInt struct{ value int64 }

func (st litInt) exec(s *execState) error { s.push(st.value); return nil }

type litFloat struct{ value float64 }

func (st litFloat) exec(s *execState) error { s.push(st.value); return nil }

type litBool struct{ value bool }

func (st litBool) exec(s *execState) error { s.push(st.value); return nil }

type litNone struct{}

func (st litNone) exec(s *execState) error { s.push(nil); return nil }

type resolveVar struct{ name string }

func (st resolveVar) exec(s *execState) error {
	v, err := s.cb.Variable(s.ctx, st.name)
	if err != nil {
		return err
	}
	s.push(v)
	return nil
}

type resolveTemplateString struct{ inner string }

func (st resolveTemplateString) exec(s *execState) error {
	v, err := s.cb.TemplateString(s.ctx, st.inner)
	if err != nil {
		return err
	}
	s.push(v)
	return nil
}

type resolveTranslation struct{ inner string }

func (st resolveTranslation) exec(s *execState) error {
	v, err := s.cb.Translation(s.ctx, st.inner)
	if err != nil {
		return err
	}
	s.push(v)
	return nil
}

// applyFilter pops the argument (if hasArg) then the value, invokes the
// filter callback, and pushes the result (spec §4.4 ApplyFilter).
type applyFilter struct {
	name   string
	hasArg bool
}

func (st applyFilter) exec(s *execState) error {
	var arg any
	if st.hasArg {
		arg = s.pop()
	}
	value := s.pop()
	res, err := s.cb.Filter(s.ctx, st.name, value, arg)
	if err != nil {
		return err
	}
	s.push(res)
	return nil
}

// listSlotKind marks whether a buildList operand expands via "*" or is
// taken as a single element.
type listSlotKind int

const (
	listSlotPlain listSlotKind = iota
	listSlotSpread
)

// buildList pops len(slots) values (pushed by the preceding steps, one
// per slot, in order) and assembles a []any, expanding any
// listSlotSpread element by iterating it (spec §4.4 BuildList).
type buildList struct{ slots []listSlotKind }

func (st buildList) exec(s *execState) error {
	n := len(st.slots)
	items, err := s.popN(n)
	if err != nil {
		return err
	}
	out := make([]any, 0, n)
	for i, kind := range st.slots {
		if kind == listSlotPlain {
			out = append(out, items[i])
			continue
		}
		it, ok := runtimeval.AsIterable(items[i])
		if !ok {
			return newSpreadTypeError("iterable", items[i])
		}
		it.Each(func(v any) bool { out = append(out, v); return true })
	}
	s.push(out)
	return nil
}

// dictSlotKind marks whether a buildDict operand is a "**value" merge
// slot (one popped value) or a "key: value" slot (two popped values).
type dictSlotKind int

const (
	dictSlotKeyValue dictSlotKind = iota
	dictSlotSpread
)

// buildDict pops the values pushed by the preceding steps — two per
// dictSlotKeyValue slot (key, then value), one per dictSlotSpread slot —
// and assembles a *runtimeval.Dict in declared order, later keys
// overwriting earlier ones (spec §4.4 BuildDict).
type buildDict struct{ slots []dictSlotKind }

func (st buildDict) exec(s *execState) error {
	total := 0
	for _, kind := range st.slots {
		if kind == dictSlotKeyValue {
			total += 2
		} else {
			total++
		}
	}
	items, err := s.popN(total)
	if err != nil {
		return err
	}
	d := runtimeval.NewDict()
	i := 0
	for _, kind := range st.slots {
		if kind == dictSlotKeyValue {
			d.Set(items[i], items[i+1])
			i += 2
			continue
		}
		if err := mergeMappingInto(d, items[i]); err != nil {
			return err
		}
		i++
	}
	s.push(d)
	return nil
}

func mergeMappingInto(d *runtimeval.Dict, v any) error {
	if src, ok := v.(*runtimeval.Dict); ok {
		d.Merge(src)
		return nil
	}
	m, ok := runtimeval.AsMapping(v)
	if !ok {
		return newSpreadTypeError("mapping", v)
	}
	m.Range(func(k, val any) bool {
		d.Set(k, val)
		return true
	})
	return nil
}
