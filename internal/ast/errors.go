package ast

import "fmt"

// GrammarError is raised by the grammar stage at the first token that
// cannot continue any production. Message lists the production names
// that could have legally followed (spec §4.1, §7).
type GrammarError struct {
	Message string
	Span    Span
}

func (e GrammarError) Error() string {
	return fmt.Sprintf("grammar error at %d:%d: %s", e.Span.Line, e.Span.Col, e.Message)
}
