// Package lexer tokenizes a "{% ... %}" tag body into the lexical
// alphabet described in spec §4.1: identifiers, numbers, quoted strings,
// the translation opener, spread markers, structural punctuation, and
// the outer delimiters. Whitespace and "{# ... #}" comments are elided
// here so later stages never see them.
package lexer

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Kind names a lexical token class. The names match the rule names
// registered with the underlying participle lexer.
type Kind string

const (
	KindComment    Kind = "Comment"
	KindWhitespace Kind = "Whitespace"
	KindOpenTag    Kind = "OpenTag"  // "{%"
	KindCloseTag   Kind = "CloseTag" // "%}"
	KindTransOpen  Kind = "TransOpen" // "_("
	KindEllipsis   Kind = "Ellipsis" // "..."
	KindDStar      Kind = "DStar"    // "**"
	KindStar       Kind = "Star"     // "*"
	KindFloat      Kind = "Float"
	KindInt        Kind = "Int"
	KindDString    Kind = "DString" // double-quoted, quotes included
	KindSString    Kind = "SString" // single-quoted, quotes included
	KindIdent      Kind = "Ident"
	KindPunct      Kind = "Punct" // one of { } [ ] ( ) . , : = | /
	KindEOF        Kind = "EOF"
)

// def is the shared lexer definition. Rule order matters: participle's
// simple lexer tries rules in the order given and takes the first match
// at the current position, so more specific patterns (Float before Int,
// "**" before "*", "_(" before a bare identifier) must come first.
var def = lexer.MustSimple([]lexer.SimpleRule{
	{Name: string(KindComment), Pattern: `\{#[\s\S]*?#\}`},
	{Name: string(KindWhitespace), Pattern: `[ \t\r\n]+`},
	{Name: string(KindOpenTag), Pattern: `\{%`},
	{Name: string(KindCloseTag), Pattern: `%\}`},
	{Name: string(KindTransOpen), Pattern: `_\(`},
	{Name: string(KindEllipsis), Pattern: `\.\.\.`},
	{Name: string(KindDStar), Pattern: `\*\*`},
	{Name: string(KindStar), Pattern: `\*`},
	{Name: string(KindFloat), Pattern: `[0-9]+\.[0-9]+`},
	{Name: string(KindInt), Pattern: `[0-9]+`},
	{Name: string(KindDString), Pattern: `"([^"\\]|\\.)*"`},
	{Name: string(KindSString), Pattern: `'([^'\\]|\\.)*'`},
	{Name: string(KindIdent), Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: string(KindPunct), Pattern: `[{}\[\]().,:=|/]`},
})

// Token is one lexical token with its byte span and 1-based line/column
// of its first byte.
type Token struct {
	Kind   Kind
	Value  string
	Offset int
	Line   int
	Column int
}

// End returns the byte offset just past the token.
func (t Token) End() int { return t.Offset + len(t.Value) }

// Stream is a fully materialized, comment/whitespace-elided token
// stream with a cursor, supporting the bounded lookahead the recursive
// descent parser needs.
type Stream struct {
	toks []Token
	pos  int
}

// Lex tokenizes input in full. input need not be trimmed; callers
// validate the "{%"..."%}" envelope themselves (spec §6).
func Lex(input string) (*Stream, error) {
	lx, err := def.Lex("", strings.NewReader(input))
	if err != nil {
		return nil, err
	}

	symbols := def.Symbols()
	names := make(map[lexer.TokenType]string, len(symbols))
	for name, tt := range symbols {
		names[tt] = name
	}

	var toks []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF() {
			break
		}
		kind := Kind(names[tok.Type])
		if kind == KindComment || kind == KindWhitespace {
			continue
		}
		toks = append(toks, Token{
			Kind:   kind,
			Value:  tok.Value,
			Offset: tok.Pos.Offset,
			Line:   tok.Pos.Line,
			Column: tok.Pos.Column,
		})
	}

	line, col := lineColAt(input, len(input))
	toks = append(toks, Token{Kind: KindEOF, Value: "", Offset: len(input), Line: line, Column: col})

	return &Stream{toks: toks}, nil
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

// Peek returns the token n positions ahead of the cursor without
// consuming anything. Peek(0) is the current token.
func (s *Stream) Peek(n int) Token {
	idx := s.pos + n
	if idx >= len(s.toks) {
		return s.toks[len(s.toks)-1] // EOF
	}
	return s.toks[idx]
}

// Cur returns the current token.
func (s *Stream) Cur() Token { return s.Peek(0) }

// Advance consumes and returns the current token.
func (s *Stream) Advance() Token {
	t := s.Cur()
	if s.pos < len(s.toks)-1 {
		s.pos++
	}
	return t
}
