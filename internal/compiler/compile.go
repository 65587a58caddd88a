package compiler

import (
	"strconv"
	"strings"

	"github.com/nyquen/tagcall/internal/ast"
)

// Compile lowers a validated *ast.Tag into a CompiledCall (spec §4.4).
// Flag attributes contribute no plan. For every other attribute the
// static order check runs immediately: once a keyword-producing
// attribute (kwattr or "**spread") has been seen, any later
// positional-producing attribute ("*spread" or a bare positional) fails
// compilation with OrderError. A "...spread" attribute's own
// contribution is classified only at invoke time (see CompiledCall.Invoke),
// so it can neither trigger nor clear this check here.
func Compile(tag *ast.Tag) (*CompiledCall, error) {
	cc := &CompiledCall{}
	sawKeyword := false

	for _, attr := range tag.Attrs {
		if attr.IsFlag {
			continue
		}

		steps, err := compileValue(attr.Value)
		if err != nil {
			return nil, err
		}

		plan := attrPlan{steps: steps, span: attr.Span}

		switch {
		case attr.Key != nil:
			plan.emit = emitKwarg
			plan.keyName = attr.Key.Text
			sawKeyword = true

		case attr.Value.Spread == ast.SpreadEllipsis:
			plan.emit = emitSpreadAmbiguous

		case attr.Value.Spread == ast.SpreadStar:
			if sawKeyword {
				return nil, OrderError{Span: attr.Span}
			}
			plan.emit = emitSpreadPositional

		case attr.Value.Spread == ast.SpreadDouble:
			plan.emit = emitSpreadKeyword
			sawKeyword = true

		default:
			if sawKeyword {
				return nil, OrderError{Span: attr.Span}
			}
			plan.emit = emitArg
		}

		cc.plans = append(cc.plans, plan)
	}

	return cc, nil
}

// compileValue emits the post-order step sequence for one Value node:
// its own literal/resolve/builder step, then one applyFilter per
// pipeline stage in source order (spec §4.4 "operands before operator;
// filter pipelines applied left to right").
func compileValue(v *ast.Value) ([]step, error) {
	var steps []step

	switch v.Kind {
	case ast.KindString:
		steps = append(steps, litString{value: unquote(v.Token.Text)})

	case ast.KindTemplateString:
		steps = append(steps, resolveTemplateString{inner: innerText(v.Token.Text)})

	case ast.KindInt:
		n, err := strconv.ParseInt(v.Token.Text, 10, 64)
		if err != nil {
			return nil, err
		}
		steps = append(steps, litInt{value: n})

	case ast.KindFloat:
		f, err := strconv.ParseFloat(v.Token.Text, 64)
		if err != nil {
			return nil, err
		}
		steps = append(steps, litFloat{value: f})

	case ast.KindBool:
		steps = append(steps, litBool{value: v.Token.Text == "true"})

	case ast.KindNone:
		steps = append(steps, litNone{})

	case ast.KindVariable:
		steps = append(steps, resolveVar{name: v.Token.Text})

	case ast.KindTranslation:
		inner := ""
		if len(v.Children) == 1 {
			inner = unquote(v.Children[0].Token.Text)
		}
		steps = append(steps, resolveTranslation{inner: inner})

	case ast.KindList:
		sub, slots, err := compileListChildren(v.Children)
		if err != nil {
			return nil, err
		}
		steps = append(steps, sub...)
		steps = append(steps, buildList{slots: slots})

	case ast.KindDict:
		sub, slots, err := compileDictChildren(v.Children)
		if err != nil {
			return nil, err
		}
		steps = append(steps, sub...)
		steps = append(steps, buildDict{slots: slots})
	}

	for _, f := range v.Filters {
		if f.Arg != nil {
			argSteps, err := compileValue(f.Arg)
			if err != nil {
				return nil, err
			}
			steps = append(steps, argSteps...)
		}
		steps = append(steps, applyFilter{name: f.Name.Text, hasArg: f.Arg != nil})
	}

	return steps, nil
}

func compileListChildren(children []*ast.Value) ([]step, []listSlotKind, error) {
	var steps []step
	slots := make([]listSlotKind, 0, len(children))
	for _, c := range children {
		sub, err := compileValue(c)
		if err != nil {
			return nil, nil, err
		}
		steps = append(steps, sub...)
		if c.Spread == ast.SpreadStar {
			slots = append(slots, listSlotSpread)
		} else {
			slots = append(slots, listSlotPlain)
		}
	}
	return steps, slots, nil
}

func compileDictChildren(children []*ast.Value) ([]step, []dictSlotKind, error) {
	var steps []step
	var slots []dictSlotKind
	for i := 0; i < len(children); {
		c := children[i]
		if c.Spread == ast.SpreadDouble {
			sub, err := compileValue(c)
			if err != nil {
				return nil, nil, err
			}
			steps = append(steps, sub...)
			slots = append(slots, dictSlotSpread)
			i++
			continue
		}
		keySteps, err := compileValue(c)
		if err != nil {
			return nil, nil, err
		}
		steps = append(steps, keySteps...)
		if i+1 < len(children) {
			valSteps, err := compileValue(children[i+1])
			if err != nil {
				return nil, nil, err
			}
			steps = append(steps, valSteps...)
		}
		slots = append(slots, dictSlotKeyValue)
		i += 2
	}
	return steps, slots, nil
}

// unquote strips a string token's surrounding quotes and resolves
// backslash escapes: each backslash is dropped and the character after
// it is kept as is (so \" gives " and \\ gives \).
func unquote(tok string) string {
	inner := innerText(tok)
	if !strings.ContainsRune(inner, '\\') {
		return inner
	}
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
		}
		b.WriteByte(inner[i])
	}
	return b.String()
}

// innerText returns the text between a token's outer quote characters,
// or the token unchanged if it is not quoted.
func innerText(tok string) string {
	if len(tok) >= 2 {
		first, last := tok[0], tok[len(tok)-1]
		if (first == '"' || first == '\'') && first == last {
			return tok[1 : len(tok)-1]
		}
	}
	return tok
}
