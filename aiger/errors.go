package aiger

import "fmt"

// ParseError reports a malformed AIGER file.
type ParseError struct {
	Op      string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("aiger: %s: %s", e.Op, e.Message)
}

func parseErrorf(op, format string, args ...any) error {
	return &ParseError{Op: op, Message: fmt.Sprintf(format, args...)}
}
