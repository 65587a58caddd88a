package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, input string) *Tag {
	t.Helper()
	tag, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", input, err)
	}
	return tag
}

func TestParse_SimpleTag(t *testing.T) {
	tag := mustParse(t, "{% c 'my_comp' key=val key2='val2 two' %}")

	if tag.Name.Text != "c" {
		t.Fatalf("name = %q, want c", tag.Name.Text)
	}
	if len(tag.Attrs) != 3 {
		t.Fatalf("len(attrs) = %d, want 3", len(tag.Attrs))
	}
	if tag.Attrs[0].Key != nil {
		t.Errorf("attrs[0] should be positional")
	}
	if tag.Attrs[0].Value.Kind != KindString {
		t.Errorf("attrs[0].Value.Kind = %s, want string", tag.Attrs[0].Value.Kind)
	}
	if tag.Attrs[1].Key == nil || tag.Attrs[1].Key.Text != "key" {
		t.Errorf("attrs[1] should be keyword 'key'")
	}
}

func TestParse_SpanFidelity(t *testing.T) {
	input := "{% c 'hello' key=42 %}"
	tag := mustParse(t, input)

	for _, attr := range tag.Attrs {
		checkSpan(t, input, attr.Value)
		if attr.Key != nil {
			checkSpan(t, input, nil, attr.Key)
		}
	}
	checkSpan(t, input, nil, &tag.Name)
}

// checkSpan verifies input[span.Start:span.End] == token text for a
// Value and/or a bare Token.
func checkSpan(t *testing.T, input string, v *Value, toks ...*Token) {
	t.Helper()
	if v != nil {
		got := input[v.Span.Start:v.Span.End]
		if got != v.Token.Text {
			t.Errorf("value span text = %q, token text = %q", got, v.Token.Text)
		}
	}
	for _, tok := range toks {
		got := input[tok.Span.Start:tok.Span.End]
		if got != tok.Text {
			t.Errorf("token span text = %q, token text = %q", got, tok.Text)
		}
	}
}

func TestParse_TagSpanUsesNamePosition(t *testing.T) {
	input := "{%   c %}"
	tag := mustParse(t, input)
	if tag.Span.Line != tag.Name.Span.Line || tag.Span.Col != tag.Name.Span.Col {
		t.Errorf("tag span (line,col) = (%d,%d), want name's (%d,%d)",
			tag.Span.Line, tag.Span.Col, tag.Name.Span.Line, tag.Name.Span.Col)
	}
}

func TestParse_SelfClosing(t *testing.T) {
	tag := mustParse(t, "{% c key=1 / %}")
	if !tag.IsSelfClosing {
		t.Errorf("expected self-closing tag")
	}
}

func TestParse_SelfClosingInMiddleErrors(t *testing.T) {
	_, err := Parse("{% c / key=1 %}")
	if err == nil {
		t.Fatalf("expected grammar error for slash in the middle")
	}
	ge, ok := err.(GrammarError)
	if !ok {
		t.Fatalf("got %T, want GrammarError", err)
	}
	if want := "attribute"; !containsProduction(ge.Message, want) {
		t.Errorf("message = %q, want it to mention %q", ge.Message, want)
	}
}

func TestParse_TemplateString(t *testing.T) {
	tag := mustParse(t, "{% c '{% lorem w 4 %}' %}")
	v := tag.Attrs[0].Value
	if v.Kind != KindTemplateString {
		t.Errorf("Kind = %s, want template_string", v.Kind)
	}
}

func TestParse_Translation(t *testing.T) {
	tag := mustParse(t, `{% c _( "hi" ) %}`)
	v := tag.Attrs[0].Value
	if v.Kind != KindTranslation {
		t.Fatalf("Kind = %s, want translation", v.Kind)
	}
	if len(v.Children) != 1 || v.Children[0].Token.Text != `"hi"` {
		t.Fatalf("unexpected translation child: %+v", v.Children)
	}
	if v.Token.Text != `_("hi")` {
		t.Errorf("canonical token = %q, want _(\"hi\")", v.Token.Text)
	}
}

func TestParse_ListAndDict(t *testing.T) {
	tag := mustParse(t, `{% c data={"key": val, **spread, "key2": val2} %}`)
	d := tag.Attrs[0].Value
	if d.Kind != KindDict {
		t.Fatalf("Kind = %s, want dict", d.Kind)
	}
	if len(d.Children) != 5 {
		t.Fatalf("len(children) = %d, want 5 (key,value,spread,key,value)", len(d.Children))
	}
	if d.Children[2].Spread != SpreadDouble {
		t.Errorf("children[2].Spread = %q, want **", d.Children[2].Spread)
	}
}

func TestParse_DictSpreadAsValueIsGrammarError(t *testing.T) {
	_, err := Parse(`{% c data={"key": **spread} %}`)
	if err == nil {
		t.Fatalf("expected grammar error")
	}
	if _, ok := err.(GrammarError); !ok {
		t.Fatalf("got %T, want GrammarError", err)
	}
}

func TestParse_EllipsisOnKeywordIsGrammarError(t *testing.T) {
	_, err := Parse(`{% c key=...{'a':'b'} %}`)
	if err == nil {
		t.Fatalf("expected grammar error")
	}
	if _, ok := err.(GrammarError); !ok {
		t.Fatalf("got %T, want GrammarError", err)
	}
}

func TestParse_FilterChain(t *testing.T) {
	tag := mustParse(t, `{% c value|lower key=val|yesno:"yes,no" %}`)
	v0 := tag.Attrs[0].Value
	if len(v0.Filters) != 1 || v0.Filters[0].Name.Text != "lower" {
		t.Fatalf("unexpected filters on attrs[0]: %+v", v0.Filters)
	}
	v1 := tag.Attrs[1].Value
	if len(v1.Filters) != 1 || v1.Filters[0].Arg == nil {
		t.Fatalf("expected one filter with an arg on attrs[1]")
	}
	if v1.Filters[0].Arg.Token.Text != `"yes,no"` {
		t.Errorf("filter arg = %q, want \"yes,no\"", v1.Filters[0].Arg.Token.Text)
	}
}

func TestParse_FilterArgCannotCarryItsOwnArg(t *testing.T) {
	_, err := Parse(`{% c val|yesno:arg|other %}`)
	if err != nil {
		t.Fatalf("filter-arg's own filter chain without ':' should parse, got %v", err)
	}

	_, err = Parse(`{% c val|yesno:arg|other:"x" %}`)
	if err == nil {
		t.Fatalf("expected grammar error for a ':' inside a filter arg's own filter chain")
	}
}

// Two parses of the same input must be structurally equal (spec §8).
// *Value/*Filter/*Attr form an arbitrarily nested pointer graph, which is
// exactly the shape cmp.Diff is for: it follows pointers and compares
// the pointed-to structs field by field instead of comparing addresses.
func TestParse_EqualityByValue(t *testing.T) {
	input := `{% c data={"key": val, **spread, "key2": val2|lower} key3=[1, *rest] %}`
	a := mustParse(t, input)
	b := mustParse(t, input)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("two parses of the same input differ (-first +second):\n%s", diff)
	}
}

func containsProduction(msg, want string) bool {
	for i := 0; i+len(want) <= len(msg); i++ {
		if msg[i:i+len(want)] == want {
			return true
		}
	}
	return false
}
