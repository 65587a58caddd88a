package ast

import (
	"strings"

	lx "github.com/nyquen/tagcall/internal/lexer"
)

// Parse builds a Tag from a raw "{% ... %}" tag body. It performs the
// Grammar and AST Builder stages (spec §4.1, §4.2) only: flag
// classification and the other context-sensitive checks are the Static
// Validator's job (internal/validate), run by the caller immediately
// after Parse succeeds.
func Parse(input string) (*Tag, error) {
	if !strings.HasPrefix(input, "{%") {
		return nil, GrammarError{Message: "expected {%", Span: Span{Line: 1, Col: 1}}
	}
	if !strings.HasSuffix(input, "%}") {
		line, col := lineColAt(input, len(input))
		return nil, GrammarError{Message: "expected %}", Span: Span{Start: len(input), End: len(input), Line: line, Col: col}}
	}

	stream, err := lx.Lex(input)
	if err != nil {
		return nil, GrammarError{Message: err.Error(), Span: Span{Line: 1, Col: 1}}
	}

	p := &parser{ts: stream, input: input}
	tag, err := p.parseTag()
	if err != nil {
		return nil, err
	}
	if p.ts.Cur().Kind != lx.KindEOF {
		return nil, p.errAt(p.ts.Cur(), "attribute")
	}
	return tag, nil
}

func lineColAt(input string, offset int) (line, col int) {
	line, col = 1, 1
	for i := 0; i < offset && i < len(input); i++ {
		if input[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

type parser struct {
	ts    *lx.Stream
	input string
}

func (p *parser) errAt(tok lx.Token, expected ...string) error {
	return GrammarError{Message: expectedMessage(expected...), Span: p.spanOf(tok)}
}

func expectedMessage(names ...string) string {
	all := append(append([]string{}, names...), "COMMENT")
	return "expected " + strings.Join(all, " or ")
}

func (p *parser) spanOf(tok lx.Token) Span {
	return Span{Start: tok.Offset, End: tok.End(), Line: tok.Line, Col: tok.Column}
}

// spanFromTo builds a span starting at a's position and ending at b's end.
func (p *parser) spanFromTo(a, b lx.Token) Span {
	return Span{Start: a.Offset, End: b.End(), Line: a.Line, Col: a.Column}
}

// spanCombine extends a's start to b's end, keeping a's line/col.
func (p *parser) spanCombine(a, b Span) Span {
	return Span{Start: a.Start, End: b.End, Line: a.Line, Col: a.Col}
}

func (p *parser) tokenFrom(tok lx.Token) Token {
	return Token{Text: tok.Value, Span: p.spanOf(tok)}
}

func (p *parser) tokenOf(span Span) Token {
	return Token{Text: p.input[span.Start:span.End], Span: span}
}

func (p *parser) isPunct(tok lx.Token, val string) bool {
	return tok.Kind == lx.KindPunct && tok.Value == val
}

func (p *parser) expectKind(kind lx.Kind, expected ...string) (lx.Token, error) {
	cur := p.ts.Cur()
	if cur.Kind != kind {
		return lx.Token{}, p.errAt(cur, expected...)
	}
	return p.ts.Advance(), nil
}

func (p *parser) expectPunct(val string, expected ...string) (lx.Token, error) {
	cur := p.ts.Cur()
	if !p.isPunct(cur, val) {
		return lx.Token{}, p.errAt(cur, expected...)
	}
	return p.ts.Advance(), nil
}

// startsAttribute reports whether tok can begin an attribute (flag,
// kwattr, or posattr — spec §4.1's attr production).
func (p *parser) startsAttribute(tok lx.Token) bool {
	return p.startsAtom(tok) || p.startsSpread(tok)
}

func (p *parser) startsAtom(tok lx.Token) bool {
	switch tok.Kind {
	case lx.KindDString, lx.KindSString, lx.KindInt, lx.KindFloat, lx.KindIdent, lx.KindTransOpen:
		return true
	case lx.KindPunct:
		return tok.Value == "[" || tok.Value == "{"
	}
	return false
}

func (p *parser) startsSpread(tok lx.Token) bool {
	switch tok.Kind {
	case lx.KindStar, lx.KindDStar, lx.KindEllipsis:
		return true
	}
	return false
}

func spreadFromKind(k lx.Kind) Spread {
	switch k {
	case lx.KindStar:
		return SpreadStar
	case lx.KindDStar:
		return SpreadDouble
	case lx.KindEllipsis:
		return SpreadEllipsis
	}
	return SpreadNone
}

// parseTag implements: tag := "{%" name attr* "/"? "%}"
func (p *parser) parseTag() (*Tag, error) {
	openTok, err := p.expectKind(lx.KindOpenTag, "tag_open")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expectKind(lx.KindIdent, "tag_name")
	if err != nil {
		return nil, err
	}

	var attrs []*Attr
	selfClosing := false

loop:
	for {
		cur := p.ts.Cur()
		switch {
		case cur.Kind == lx.KindCloseTag:
			break loop
		case p.isPunct(cur, "/") && p.ts.Peek(1).Kind == lx.KindCloseTag:
			p.ts.Advance()
			selfClosing = true
			break loop
		case p.startsAttribute(cur):
			a, err := p.parseAttr()
			if err != nil {
				return nil, err
			}
			attrs = append(attrs, a)
		default:
			return nil, p.errAt(cur, "attribute")
		}
	}

	closeTok, err := p.expectKind(lx.KindCloseTag, "attribute")
	if err != nil {
		return nil, err
	}

	tagSpan := p.spanFromTo(openTok, closeTok)
	nameSpan := p.spanOf(nameTok)
	return &Tag{
		Name:          Token{Text: nameTok.Value, Span: nameSpan},
		Attrs:         attrs,
		IsSelfClosing: selfClosing,
		Syntax:        SyntaxStandard,
		Span:          Span{Start: tagSpan.Start, End: tagSpan.End, Line: nameSpan.Line, Col: nameSpan.Col},
	}, nil
}

// parseAttr implements: attr := flag | kwattr | posattr
//
// Flag-vs-bare-variable classification is deferred to the validator
// (spec §4.3 item 1); here every bare-IDENT positional attribute is
// just parsed as a posattr and IsFlag is left false.
func (p *parser) parseAttr() (*Attr, error) {
	cur := p.ts.Cur()
	if cur.Kind == lx.KindIdent && p.isPunct(p.ts.Peek(1), "=") {
		keyTok := p.ts.Advance()
		p.ts.Advance() // '='

		// kwattr's value production is plain `value`: no spread allowed.
		if p.startsSpread(p.ts.Cur()) {
			return nil, p.errAt(p.ts.Cur(), "value")
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		key := p.tokenFrom(keyTok)
		span := p.spanCombine(key.Span, val.Span)
		return &Attr{Key: &key, Value: val, Span: span}, nil
	}

	val, err := p.parsePosAttrValue()
	if err != nil {
		return nil, err
	}
	return &Attr{Key: nil, Value: val, Span: val.Span}, nil
}

// parsePosAttrValue implements: posattr := spread_value | value
func (p *parser) parsePosAttrValue() (*Value, error) {
	cur := p.ts.Cur()
	if !p.startsSpread(cur) {
		return p.parseValue()
	}

	marker := p.ts.Advance()
	spread := spreadFromKind(marker.Kind)

	var inner *Value
	var err error
	switch {
	case p.isPunct(p.ts.Cur(), "["):
		inner, err = p.parseList()
	case p.isPunct(p.ts.Cur(), "{"):
		inner, err = p.parseDict()
	case p.ts.Cur().Kind == lx.KindIdent:
		inner, err = p.parseVariableAtom()
	default:
		return nil, p.errAt(p.ts.Cur(), "value")
	}
	if err != nil {
		return nil, err
	}

	inner.Spread = spread
	inner.Span = p.spanCombine(p.spanOf(marker), inner.Span)
	inner.Token = p.tokenOf(inner.Span)
	return inner, nil
}

// parseValue implements: value := atom filter*
func (p *parser) parseValue() (*Value, error) {
	if p.startsSpread(p.ts.Cur()) {
		return nil, p.errAt(p.ts.Cur(), "value")
	}
	v, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.isPunct(p.ts.Cur(), "|") {
		f, err := p.parseFilter()
		if err != nil {
			return nil, err
		}
		v.Filters = append(v.Filters, f)
		v.Span = p.spanCombine(v.Span, f.Span)
	}
	if len(v.Filters) > 0 {
		v.Token = p.tokenOf(v.Span)
	}
	return v, nil
}

// parseValueNoFilterArg implements `value_noFilterChainOnArg`: a value
// whose filter chain may not itself carry a `:arg` (spec §4.1's note on
// filter arguments).
func (p *parser) parseValueNoFilterArg() (*Value, error) {
	if p.startsSpread(p.ts.Cur()) {
		return nil, p.errAt(p.ts.Cur(), "value")
	}
	v, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.isPunct(p.ts.Cur(), "|") {
		f, err := p.parseFilterNoArg()
		if err != nil {
			return nil, err
		}
		v.Filters = append(v.Filters, f)
		v.Span = p.spanCombine(v.Span, f.Span)
	}
	if len(v.Filters) > 0 {
		v.Token = p.tokenOf(v.Span)
	}
	return v, nil
}

func (p *parser) parseFilter() (*Filter, error) {
	bar := p.ts.Advance() // '|'
	nameTok, err := p.expectKind(lx.KindIdent, "filter_name")
	if err != nil {
		return nil, err
	}
	f := &Filter{Name: p.tokenFrom(nameTok)}
	if p.isPunct(p.ts.Cur(), ":") {
		p.ts.Advance()
		arg, err := p.parseValueNoFilterArg()
		if err != nil {
			return nil, err
		}
		f.Arg = arg
		f.Span = Span{Start: bar.Offset, End: arg.Span.End, Line: bar.Line, Col: bar.Column}
	} else {
		f.Span = p.spanFromTo(bar, nameTok)
	}
	return f, nil
}

func (p *parser) parseFilterNoArg() (*Filter, error) {
	bar := p.ts.Advance() // '|'
	nameTok, err := p.expectKind(lx.KindIdent, "filter_name")
	if err != nil {
		return nil, err
	}
	if p.isPunct(p.ts.Cur(), ":") {
		return nil, p.errAt(p.ts.Cur(), "filter_chain_noarg")
	}
	return &Filter{Name: p.tokenFrom(nameTok), Span: p.spanFromTo(bar, nameTok)}, nil
}

// parseAtom implements the `atom` production.
func (p *parser) parseAtom() (*Value, error) {
	cur := p.ts.Cur()
	switch cur.Kind {
	case lx.KindDString, lx.KindSString:
		p.ts.Advance()
		kind := KindString
		if isTemplateMarkerText(cur.Value) {
			kind = KindTemplateString
		}
		span := p.spanOf(cur)
		return &Value{Kind: kind, Token: Token{Text: cur.Value, Span: span}, Span: span}, nil

	case lx.KindFloat:
		p.ts.Advance()
		span := p.spanOf(cur)
		return &Value{Kind: KindFloat, Token: Token{Text: cur.Value, Span: span}, Span: span}, nil

	case lx.KindInt:
		p.ts.Advance()
		span := p.spanOf(cur)
		return &Value{Kind: KindInt, Token: Token{Text: cur.Value, Span: span}, Span: span}, nil

	case lx.KindIdent:
		return p.parseIdentAtom()

	case lx.KindTransOpen:
		return p.parseTranslation()

	case lx.KindPunct:
		switch cur.Value {
		case "[":
			return p.parseList()
		case "{":
			return p.parseDict()
		}
	}
	return nil, p.errAt(cur, "value")
}

func (p *parser) parseVariableAtom() (*Value, error) {
	tok, err := p.expectKind(lx.KindIdent, "value")
	if err != nil {
		return nil, err
	}
	span := p.spanOf(tok)
	return &Value{Kind: KindVariable, Token: Token{Text: tok.Value, Span: span}, Span: span}, nil
}

// parseIdentAtom classifies a bare identifier per spec §4.2's table:
// "true"/"false" -> bool, "none"/"null" -> none, else -> variable.
func (p *parser) parseIdentAtom() (*Value, error) {
	tok := p.ts.Advance()
	span := p.spanOf(tok)
	kind := KindVariable
	switch tok.Value {
	case "true", "false":
		kind = KindBool
	case "none", "null":
		kind = KindNone
	}
	return &Value{Kind: kind, Token: Token{Text: tok.Value, Span: span}, Span: span}, nil
}

// parseTranslation implements: "_(" STRING ")"
func (p *parser) parseTranslation() (*Value, error) {
	open := p.ts.Advance() // "_("
	strCur := p.ts.Cur()
	if strCur.Kind != lx.KindDString && strCur.Kind != lx.KindSString {
		return nil, p.errAt(strCur, "value")
	}
	p.ts.Advance()
	closeTok, err := p.expectPunct(")", "value")
	if err != nil {
		return nil, err
	}

	span := p.spanFromTo(open, closeTok)
	innerSpan := p.spanOf(strCur)
	inner := &Value{Kind: KindString, Token: Token{Text: strCur.Value, Span: innerSpan}, Span: innerSpan}
	canonical := "_(" + strCur.Value + ")"
	return &Value{
		Kind:     KindTranslation,
		Token:    Token{Text: canonical, Span: span},
		Children: []*Value{inner},
		Span:     span,
	}, nil
}

// parseList implements: list := "[" (list_item ("," list_item)* ","?)? "]"
func (p *parser) parseList() (*Value, error) {
	open, err := p.expectPunct("[", "value")
	if err != nil {
		return nil, err
	}

	var children []*Value
	for {
		if p.isPunct(p.ts.Cur(), "]") {
			break
		}
		item, err := p.parseListItem()
		if err != nil {
			return nil, err
		}
		children = append(children, item)
		if p.isPunct(p.ts.Cur(), ",") {
			p.ts.Advance()
			continue
		}
		break
	}

	closeTok, err := p.expectPunct("]", "value")
	if err != nil {
		return nil, err
	}
	span := p.spanFromTo(open, closeTok)
	return &Value{Kind: KindList, Token: p.tokenOf(span), Children: children, Span: span}, nil
}

// parseListItem implements: list_item := ("*" value) | value
//
// A leading "**" or "..." is also accepted here so the validator (not
// the grammar) can reject the illegal placements — see DESIGN.md Open
// Question 1.
func (p *parser) parseListItem() (*Value, error) {
	cur := p.ts.Cur()
	if p.startsSpread(cur) {
		marker := p.ts.Advance()
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		v.Spread = spreadFromKind(marker.Kind)
		v.Span = p.spanCombine(p.spanOf(marker), v.Span)
		v.Token = p.tokenOf(v.Span)
		return v, nil
	}
	return p.parseValue()
}

// parseDict implements: dict := "{" (dict_item ("," dict_item)* ","?)? "}"
func (p *parser) parseDict() (*Value, error) {
	open, err := p.expectPunct("{", "value")
	if err != nil {
		return nil, err
	}

	var children []*Value
	for {
		if p.isPunct(p.ts.Cur(), "}") {
			break
		}
		if !p.startsAtom(p.ts.Cur()) && !p.startsSpread(p.ts.Cur()) {
			return nil, p.errAt(p.ts.Cur(), "dict_key", "dict_item_spread")
		}
		items, err := p.parseDictItem()
		if err != nil {
			return nil, err
		}
		children = append(children, items...)
		if p.isPunct(p.ts.Cur(), ",") {
			p.ts.Advance()
			continue
		}
		break
	}

	closeTok, err := p.expectPunct("}", "dict_key", "dict_item_spread")
	if err != nil {
		return nil, err
	}
	span := p.spanFromTo(open, closeTok)
	return &Value{Kind: KindDict, Token: p.tokenOf(span), Children: children, Span: span}, nil
}

// parseDictItem implements: dict_item := ("**" value) | (dict_key ":" value)
//
// A leading "*" or "..." is also accepted, deferred to the validator
// (spec §4.3 item 2, DESIGN.md Open Question 1).
func (p *parser) parseDictItem() ([]*Value, error) {
	cur := p.ts.Cur()
	if p.startsSpread(cur) {
		marker := p.ts.Advance()
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		v.Spread = spreadFromKind(marker.Kind)
		v.Span = p.spanCombine(p.spanOf(marker), v.Span)
		v.Token = p.tokenOf(v.Span)
		return []*Value{v}, nil
	}

	key, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(":", "dict_key"); err != nil {
		return nil, err
	}
	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return []*Value{key, val}, nil
}

// isTemplateMarkerText reports whether a quoted string's contents
// contain a tag/variable marker, per spec §4.2's classification table.
func isTemplateMarkerText(quoted string) bool {
	inner := quoted
	if len(inner) >= 2 {
		inner = inner[1 : len(inner)-1]
	}
	for _, marker := range []string{"{%", "%}", "{{", "}}", "{#", "#}"} {
		if strings.Contains(inner, marker) {
			return true
		}
	}
	return false
}

