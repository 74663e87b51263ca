package timetable

import "fmt"

// RenderError reports a failure while producing the output document.
type RenderError struct {
	// Stage is one of breaks, html, stylesheet, paginate, write.
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
