package feed

import "fmt"

// FetchError reports a failure to download the feed. It is fatal for a run.
type FetchError struct {
	URL string
	// Status is the HTTP status code, or 0 for transport failures.
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError reports malformed XML or a missing required attribute.
type ParseError struct {
	// Element is the offending tag, Attr the attribute when one is at fault.
	Element string
	Attr    string
	Line    int
	Err     error
}

func (e *ParseError) Error() string {
	msg := "parse"
	if e.Element != "" {
		msg += " <" + e.Element + ">"
	}
	if e.Attr != "" {
		msg += " attribute " + e.Attr
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" (line %d)", e.Line)
	}
	return msg + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnrecognizedElement is an unexpected top-level tag. It is logged and
// skipped, never returned as a failure.
type UnrecognizedElement struct {
	Tag  string
	Line int
}

func (e UnrecognizedElement) Error() string {
	return fmt.Sprintf("unrecognized element <%s> at line %d", e.Tag, e.Line)
}
