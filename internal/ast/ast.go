// Package ast defines the tagged tree produced by the grammar stage
// (spec §3, §4.2): Span, Token, Value, Filter, Attr, and the Tag root.
// Every node here is immutable once built and owns its own tokens; spans
// point into the original input but do not borrow it (Token.Text is an
// owned copy of the matched slice).
package ast

import "fmt"

// Span is a half-open byte range [Start, End) plus the 1-based
// (Line, Col) of its first byte, computed once at build time.
type Span struct {
	Start, End int
	Line, Col  int
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Col)
}

// Token is a verbatim slice of the input plus its Span. Quoted tokens
// retain their surrounding quotes.
type Token struct {
	Text string
	Span Span
}

// ValueKind tags the variant carried by a Value node.
type ValueKind string

const (
	KindString         ValueKind = "string"
	KindInt            ValueKind = "int"
	KindFloat          ValueKind = "float"
	KindBool           ValueKind = "bool"
	KindNone           ValueKind = "none"
	KindVariable       ValueKind = "variable"
	KindTranslation    ValueKind = "translation"
	KindTemplateString ValueKind = "template_string"
	KindList           ValueKind = "list"
	KindDict           ValueKind = "dict"
)

// Spread tags the expansion marker attached to a Value, if any.
type Spread string

const (
	SpreadNone     Spread = ""
	SpreadStar     Spread = "*"
	SpreadDouble   Spread = "**"
	SpreadEllipsis Spread = "..."
)

// Value is the single node type for every literal, variable reference,
// translation, template string, list, and dict in the grammar.
//
// For KindList, Children holds the sequence elements in order. For
// KindDict, Children holds alternating (key, value) pairs; a
// spread-marked child occupies one slot on its own with no paired
// value. For KindTranslation, Children holds exactly one element: the
// inner quoted string literal (itself a Value of KindString).
type Value struct {
	Kind     ValueKind
	Token    Token
	Children []*Value
	Spread   Spread
	Filters  []*Filter
	Span     Span
}

// Filter is one `|name` or `|name:arg` pipeline stage.
type Filter struct {
	Name Token
	Arg  *Value
	Span Span
}

// Attr is one positional or keyword attribute inside a tag.
type Attr struct {
	Key    *Token // nil for positional attributes
	Value  *Value
	IsFlag bool
	Span   Span
}

// TagSyntax names the surface syntax a Tag was parsed under. Only one
// syntax is defined today; the field exists so a caller embedding this
// engine in a larger template system can tag which dialect produced a
// given Tag without the core needing to know about dialects itself.
type TagSyntax string

const SyntaxStandard TagSyntax = "standard"

// Tag is the root AST node for one "{% ... %}" expression.
type Tag struct {
	Name          Token
	Attrs         []*Attr
	IsSelfClosing bool
	Syntax        TagSyntax
	Span          Span
}
