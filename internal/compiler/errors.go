package compiler

import (
	"fmt"

	"github.com/nyquen/tagcall/internal/ast"
)

// OrderError reports a positional-producing emission scheduled after a
// keyword-producing one (spec §4.4, §7). It is raised statically by
// Compile when both sides of the violation are known at compile time,
// and again by CompiledCall.Invoke when a "..." attribute, whose
// positional or keyword output is only classified at run time, puts a
// positional argument after a keyword one.
type OrderError struct {
	Span ast.Span
}

func (e OrderError) Error() string {
	return fmt.Sprintf("order error at %d:%d: positional argument follows keyword argument", e.Span.Line, e.Span.Col)
}

// SpreadTypeError reports a spread operand that does not satisfy the
// contract its marker demanded: "*"/positional "..." need Iterable,
// "**"/keyword "..." need Mapping (spec §7, §9). A keyword spread whose
// mapping has a non-string key also reports this error, naming the key.
type SpreadTypeError struct {
	Want string // "iterable", "mapping", "mapping or iterable", or "string" (a keyword-spread key)
	Got  any
}

func (e SpreadTypeError) Error() string {
	return fmt.Sprintf("'%T' object is not %s", e.Got, e.Want)
}

func newSpreadTypeError(want string, got any) error {
	return SpreadTypeError{Want: want, Got: got}
}
