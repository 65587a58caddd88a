// Package validate runs the Static Validator pass (spec §4.3) over an
// already-built *ast.Tag: flag classification/uniqueness, spread
// placement, filter-arg shape, and self-closing slash position.
package validate

import (
	"fmt"

	"github.com/nyquen/tagcall/internal/ast"
)

// FlagError reports a duplicate flag attribute.
type FlagError struct {
	Message string
	Span    ast.Span
}

func (e FlagError) Error() string {
	return fmt.Sprintf("flag error at %d:%d: %s", e.Span.Line, e.Span.Col, e.Message)
}

// SpreadPlacementError reports a spread marker used somewhere the
// grammar accepted loosely but is not actually legal (spec §4.3 item 2).
type SpreadPlacementError struct {
	Message string
	Span    ast.Span
}

func (e SpreadPlacementError) Error() string {
	return fmt.Sprintf("spread placement error at %d:%d: %s", e.Span.Line, e.Span.Col, e.Message)
}
