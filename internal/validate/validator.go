package validate

import (
	"fmt"

	"github.com/nyquen/tagcall/internal/ast"
)

// Validate runs the context-sensitive checks the grammar cannot express
// alone (spec §4.3). It mutates attr.IsFlag in place and returns the
// first violation found.
//
// Two of the four rules in §4.3 — filter-arg shape (item 3) and
// self-closing slash position (item 4) — are already fully enforced by
// the grammar stage itself (internal/ast), because both are
// syntax-local enough for a hand-written recursive descent parser to
// reject outright; Validate only performs the two genuinely
// context-sensitive passes: flag classification (item 1, needs the
// caller-supplied flag set) and spread placement (item 2, needs to know
// whether a spread marker's host Value sits at the top level, inside a
// list, or inside a dict).
func Validate(tag *ast.Tag, flags map[string]bool) error {
	if err := applyFlags(tag, flags); err != nil {
		return err
	}
	return validateSpreadPlacement(tag)
}

func applyFlags(tag *ast.Tag, flags map[string]bool) error {
	seen := make(map[string]bool, len(tag.Attrs))
	for _, attr := range tag.Attrs {
		attr.IsFlag = false
		if attr.Key != nil {
			continue
		}
		if attr.Value.Kind != ast.KindVariable || attr.Value.Spread != ast.SpreadNone {
			continue
		}
		name := attr.Value.Token.Text
		if len(flags) == 0 || !flags[name] {
			continue
		}
		if seen[name] {
			return FlagError{
				Message: fmt.Sprintf("flag %q may be specified only once", name),
				Span:    attr.Span,
			}
		}
		seen[name] = true
		attr.IsFlag = true
	}
	return nil
}

func validateSpreadPlacement(tag *ast.Tag) error {
	for _, attr := range tag.Attrs {
		if attr.Key == nil {
			if err := checkTopLevelSpread(attr.Value); err != nil {
				return err
			}
		} else if attr.Value.Spread != ast.SpreadNone {
			return SpreadPlacementError{
				Message: "spread markers are not allowed on a keyword attribute",
				Span:    attr.Value.Span,
			}
		}
		if err := walkValue(attr.Value); err != nil {
			return err
		}
	}
	return nil
}

// checkTopLevelSpread enforces: "*" only on a list, "**" only on a
// dict, "..." on a list, dict, or variable (spec §4.3 item 2).
func checkTopLevelSpread(v *ast.Value) error {
	switch v.Spread {
	case ast.SpreadNone:
		return nil
	case ast.SpreadStar:
		if v.Kind != ast.KindList {
			return SpreadPlacementError{Message: "'*' on a positional attribute requires a list literal", Span: v.Span}
		}
	case ast.SpreadDouble:
		if v.Kind != ast.KindDict {
			return SpreadPlacementError{Message: "'**' on a positional attribute requires a dict literal", Span: v.Span}
		}
	case ast.SpreadEllipsis:
		if v.Kind != ast.KindList && v.Kind != ast.KindDict && v.Kind != ast.KindVariable {
			return SpreadPlacementError{Message: "'...' on a positional attribute requires a list, dict, or variable", Span: v.Span}
		}
	}
	return nil
}

// walkValue recurses into a value's children and filter arguments,
// checking that any spread marker nested inside a list or dict literal
// sits in a legal slot: "*" inside a list, "**" inside a dict, nothing
// else (spec §4.3 item 2: "'**' inside a list and '*' inside a dict are
// rejected"). The grammar accepts any spread marker, "..." included, on
// a list or dict item, so "..." below the top level is rejected here too.
func walkValue(v *ast.Value) error {
	switch v.Kind {
	case ast.KindList:
		for _, c := range v.Children {
			if c.Spread != ast.SpreadNone && c.Spread != ast.SpreadStar {
				return SpreadPlacementError{
					Message: fmt.Sprintf("'%s' is not allowed inside a list literal", c.Spread),
					Span:    c.Span,
				}
			}
			if err := walkValue(c); err != nil {
				return err
			}
		}

	case ast.KindDict:
		for i := 0; i < len(v.Children); {
			c := v.Children[i]
			if c.Spread != ast.SpreadNone {
				if c.Spread != ast.SpreadDouble {
					return SpreadPlacementError{
						Message: fmt.Sprintf("'%s' is not allowed inside a dict literal", c.Spread),
						Span:    c.Span,
					}
				}
				if err := walkValue(c); err != nil {
					return err
				}
				i++
				continue
			}
			if err := walkValue(c); err != nil {
				return err
			}
			if i+1 < len(v.Children) {
				if err := walkValue(v.Children[i+1]); err != nil {
					return err
				}
			}
			i += 2
		}

	case ast.KindTranslation:
		for _, c := range v.Children {
			if err := walkValue(c); err != nil {
				return err
			}
		}
	}

	for _, f := range v.Filters {
		if f.Arg != nil {
			if err := walkValue(f.Arg); err != nil {
				return err
			}
		}
	}
	return nil
}
