package parser

import "fmt"

// ParseError reports a page that does not have the expected shape. Incomplete pages
// (nothing rendered yet) are worth another fetch; any other shape problem is final.
type ParseError struct {
	Sheet      string
	Reason     string
	Incomplete bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Sheet, e.Reason)
}

func (e *ParseError) Retryable() bool {
	return e.Incomplete
}
