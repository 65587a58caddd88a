package validate

import (
	"testing"

	"github.com/nyquen/tagcall/internal/ast"
)

func parseOrFail(t *testing.T, input string) *ast.Tag {
	t.Helper()
	tag, err := ast.Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", input, err)
	}
	return tag
}

func TestValidate_FlagClassification(t *testing.T) {
	tag := parseOrFail(t, "{% t my_flag %}")
	if err := Validate(tag, map[string]bool{"my_flag": true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tag.Attrs[0].IsFlag {
		t.Errorf("expected my_flag to be classified as a flag")
	}
}

func TestValidate_FlagCaseSensitive(t *testing.T) {
	tag := parseOrFail(t, "{% t my_flag %}")
	if err := Validate(tag, map[string]bool{"MY_FLAG": true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag.Attrs[0].IsFlag {
		t.Errorf("MY_FLAG should not match my_flag")
	}
	if tag.Attrs[0].Value.Kind != ast.KindVariable {
		t.Errorf("non-flag bare identifier should resolve as a variable")
	}
}

func TestValidate_FlagDuplicateErrors(t *testing.T) {
	tag := parseOrFail(t, "{% t my_flag my_flag %}")
	err := Validate(tag, map[string]bool{"my_flag": true})
	if err == nil {
		t.Fatalf("expected a duplicate-flag error")
	}
	if _, ok := err.(FlagError); !ok {
		t.Fatalf("got %T, want FlagError", err)
	}
}

func TestValidate_KeywordUseIsNeverAFlag(t *testing.T) {
	tag := parseOrFail(t, "{% t my_flag=1 %}")
	if err := Validate(tag, map[string]bool{"my_flag": true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag.Attrs[0].IsFlag {
		t.Errorf("a keyword attribute must never be classified as a flag")
	}
}

func TestValidate_StarOnNonListIsRejected(t *testing.T) {
	tag := parseOrFail(t, "{% t *myvar %}")
	err := Validate(tag, nil)
	if err == nil {
		t.Fatalf("expected spread placement error")
	}
	if _, ok := err.(SpreadPlacementError); !ok {
		t.Fatalf("got %T, want SpreadPlacementError", err)
	}
}

func TestValidate_StarOnListIsLegal(t *testing.T) {
	tag := parseOrFail(t, "{% t *[1,2,3] %}")
	if err := Validate(tag, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_EllipsisOnVariableIsLegal(t *testing.T) {
	tag := parseOrFail(t, "{% t ...myvar %}")
	if err := Validate(tag, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_DoubleStarInsideListIsRejected(t *testing.T) {
	tag := parseOrFail(t, "{% t [**myvar] %}")
	err := Validate(tag, nil)
	if err == nil {
		t.Fatalf("expected spread placement error")
	}
	if _, ok := err.(SpreadPlacementError); !ok {
		t.Fatalf("got %T, want SpreadPlacementError", err)
	}
}
