package lexer

import "testing"

func TestLex_BasicTokens(t *testing.T) {
	s, err := Lex(`{% c 'hi' key=1.5 ... * ** _( %}`)
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}

	var kinds []Kind
	for {
		tok := s.Advance()
		kinds = append(kinds, tok.Kind)
		if tok.Kind == KindEOF {
			break
		}
	}

	want := []Kind{
		KindOpenTag, KindIdent, KindSString, KindIdent, KindPunct,
		KindFloat, KindEllipsis, KindStar, KindDStar, KindTransOpen,
		KindCloseTag, KindEOF,
	}
	if len(kinds) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(kinds), kinds, len(want), want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestLex_CommentsAndWhitespaceAreElided(t *testing.T) {
	s, err := Lex("{% c {# a comment #}   key %}")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	for {
		tok := s.Advance()
		if tok.Kind == KindComment || tok.Kind == KindWhitespace {
			t.Fatalf("comment/whitespace token leaked into the stream: %+v", tok)
		}
		if tok.Kind == KindEOF {
			break
		}
	}
}

func TestLex_DStarBeforeStar(t *testing.T) {
	s, err := Lex("**")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	tok := s.Advance()
	if tok.Kind != KindDStar {
		t.Fatalf("Kind = %s, want DStar (greedy match over two Star tokens)", tok.Kind)
	}
}
