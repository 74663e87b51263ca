package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"confprint/internal/config"
	"confprint/internal/feed"
	"confprint/internal/ics"
	appLog "confprint/internal/log"
	"confprint/internal/model"
	"confprint/internal/timetable"
	"confprint/internal/web"
)

// Pipeline runs fetch -> parse -> render -> write for one configuration.
// Every run builds a fresh Conference, so nothing leaks between runs.
type Pipeline struct {
	cfg      *config.Config
	fetcher  *feed.Fetcher
	builder  *timetable.Builder
	renderer *timetable.Renderer
	preview  *web.Server
}

// Result summarizes one run.
type Result struct {
	Report   feed.Report
	Document timetable.Document
	Bytes    int
	ICSPath  string
	Duration time.Duration
}

// New wires a pipeline. paginator turns HTML into the final document.
func New(cfg *config.Config, paginator timetable.Paginator) (*Pipeline, error) {
	rules, err := timetable.CompileBreaks(cfg.Breaks)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	builder := timetable.NewBuilder(timetable.Options{
		Label:    cfg.Label,
		Excluded: cfg.IsExcluded,
		Breaks:   rules,
		Format:   timetable.NewFormatter(cfg.Locale),
	})

	return &Pipeline{
		cfg:     cfg,
		fetcher: feed.NewFetcher(time.Duration(cfg.FetchTimeoutSec) * time.Second),
		builder: builder,
		renderer: &timetable.Renderer{
			Builder:    builder,
			Paginator:  paginator,
			Stylesheet: cfg.Stylesheet,
			Output:     cfg.Output,
		},
	}, nil
}

// SetPreview makes every successful run refresh s.
func (p *Pipeline) SetPreview(s *web.Server) {
	p.preview = s
}

// Builder exposes the document builder for commands that only need the
// Document (summary).
func (p *Pipeline) Builder() *timetable.Builder {
	return p.builder
}

// Load fetches and parses the feed into a new Conference.
func (p *Pipeline) Load(ctx context.Context) (*model.Conference, feed.Report, error) {
	conf := model.NewConference(p.cfg.FeedURL)
	report, err := feed.Parse(ctx, p.fetcher, conf)
	if err != nil {
		return nil, report, err
	}
	return conf, report, nil
}

// Run performs one complete render. Errors are returned unwrapped enough
// for errors.As to find feed.FetchError, feed.ParseError or
// timetable.RenderError.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	started := time.Now()

	conf, report, err := p.Load(ctx)
	if err != nil {
		return Result{Report: report}, err
	}

	rendered, err := p.renderer.Render(ctx, conf)
	if err != nil {
		return Result{Report: report}, err
	}

	res := Result{
		Report:   report,
		Document: rendered.Document,
		Bytes:    rendered.Bytes,
	}

	if p.cfg.ICSOutput != "" {
		if err := p.exportICS(conf); err != nil {
			return res, err
		}
		res.ICSPath = p.cfg.ICSOutput
	}

	if p.preview != nil {
		css, err := os.ReadFile(p.cfg.Stylesheet)
		if err != nil {
			appLog.Error("preview stylesheet read failed", err, "stylesheet", p.cfg.Stylesheet)
		}
		p.preview.SetSnapshot(web.Snapshot{HTML: rendered.HTML, CSS: css, PDFPath: p.cfg.Output})
	}

	res.Duration = time.Since(started)
	appLog.Info("pipeline run completed", "output", p.cfg.Output, "duration", res.Duration.Round(time.Millisecond))
	return res, nil
}

// ExportICS fetches the feed and writes only the calendar export.
func (p *Pipeline) ExportICS(ctx context.Context) (feed.Report, error) {
	conf, report, err := p.Load(ctx)
	if err != nil {
		return report, err
	}
	return report, p.exportICS(conf)
}

func (p *Pipeline) exportICS(conf *model.Conference) error {
	if p.cfg.ICSOutput == "" {
		return fmt.Errorf("ics export: no ics_output configured")
	}
	var buf bytes.Buffer
	opts := ics.ExportOptions{Location: ics.ConferenceLocation(conf)}
	if err := ics.Export(&buf, conf, opts); err != nil {
		return fmt.Errorf("ics export: %w", err)
	}
	if err := timetable.ReplaceFile(p.cfg.ICSOutput, buf.Bytes()); err != nil {
		return fmt.Errorf("ics export: %w", err)
	}
	appLog.Info("calendar exported", "output", p.cfg.ICSOutput, "events", len(conf.Events()))
	return nil
}
