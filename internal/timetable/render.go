package timetable

import (
	"bytes"
	"context"
	"errors"
	"os"

	appLog "confprint/internal/log"
	"confprint/internal/model"
)

// Paginator lays out an HTML page with its stylesheet into a paginated
// document.
type Paginator interface {
	Paginate(ctx context.Context, html, css []byte) ([]byte, error)
}

// Renderer produces the timetable document for a conference.
type Renderer struct {
	Builder    *Builder
	Paginator  Paginator
	Stylesheet string
	Output     string
}

// Result describes a finished render.
type Result struct {
	Document Document
	HTML     []byte
	Bytes    int
}

// Render builds, paginates and writes the document. Output is only touched
// once the paginated bytes exist.
func (r *Renderer) Render(ctx context.Context, conf *model.Conference) (Result, error) {
	doc, err := r.Builder.Build(conf)
	if err != nil {
		return Result{}, err
	}

	var page bytes.Buffer
	if err := WriteHTML(&page, doc); err != nil {
		return Result{}, err
	}

	css, err := os.ReadFile(r.Stylesheet)
	if err != nil {
		return Result{}, &RenderError{Stage: "stylesheet", Err: err}
	}

	pdf, err := r.Paginator.Paginate(ctx, page.Bytes(), css)
	if err != nil {
		return Result{}, &RenderError{Stage: "paginate", Err: err}
	}
	if len(pdf) == 0 {
		return Result{}, &RenderError{Stage: "paginate", Err: errors.New("empty document")}
	}

	if err := ReplaceFile(r.Output, pdf); err != nil {
		return Result{}, &RenderError{Stage: "write", Err: err}
	}

	tables := 0
	for _, d := range doc.Days {
		tables += len(d.Rooms)
	}
	appLog.Info("timetable written", "output", r.Output, "days", len(doc.Days), "tables", tables, "bytes", len(pdf))

	return Result{Document: doc, HTML: page.Bytes(), Bytes: len(pdf)}, nil
}
