// Package tagcall is the public entry point for the tag-call engine:
// parse_tag, compile_tag, and CompiledCall.invoke from spec §6, built
// from the internal grammar, validator, and compiler stages.
package tagcall

import (
	"github.com/nyquen/tagcall/internal/ast"
	"github.com/nyquen/tagcall/internal/compiler"
	"github.com/nyquen/tagcall/internal/validate"
)

type (
	Tag       = ast.Tag
	Attr      = ast.Attr
	Value     = ast.Value
	Filter    = ast.Filter
	Token     = ast.Token
	Span      = ast.Span
	ValueKind = ast.ValueKind
	Spread    = ast.Spread
	TagSyntax = ast.TagSyntax
)

const (
	KindString         = ast.KindString
	KindInt            = ast.KindInt
	KindFloat          = ast.KindFloat
	KindBool           = ast.KindBool
	KindNone           = ast.KindNone
	KindVariable       = ast.KindVariable
	KindTranslation    = ast.KindTranslation
	KindTemplateString = ast.KindTemplateString
	KindList           = ast.KindList
	KindDict           = ast.KindDict
)

const (
	SpreadNone     = ast.SpreadNone
	SpreadStar     = ast.SpreadStar
	SpreadDouble   = ast.SpreadDouble
	SpreadEllipsis = ast.SpreadEllipsis
)

const SyntaxStandard = ast.SyntaxStandard

type (
	CompiledCall = compiler.CompiledCall
	Callbacks    = compiler.Callbacks
	KV           = compiler.KV
)

type (
	GrammarError         = ast.GrammarError
	FlagError            = validate.FlagError
	SpreadPlacementError = validate.SpreadPlacementError
	OrderError           = compiler.OrderError
	SpreadTypeError      = compiler.SpreadTypeError
)

// ParseTag parses one "{% ... %}" expression and immediately runs the
// static validator over the result (spec §6 parse_tag). flags names the
// tag-specific set of bare identifiers that count as flags; pass nil
// for a tag with no flags.
func ParseTag(input string, flags map[string]bool) (*Tag, error) {
	tag, err := ast.Parse(input)
	if err != nil {
		return nil, err
	}
	if err := validate.Validate(tag, flags); err != nil {
		return nil, err
	}
	return tag, nil
}

// CompileTag lowers an already-validated Tag into a reusable
// CompiledCall (spec §6 compile_tag).
func CompileTag(tag *Tag) (*CompiledCall, error) {
	return compiler.Compile(tag)
}
