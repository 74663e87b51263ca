package commands

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"confprint/internal/capture"
	"confprint/internal/config"
	appLog "confprint/internal/log"
	"confprint/internal/pipeline"
	"confprint/internal/printer"
)

var renderOnce bool

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Fetch the schedule and write the PDF timetable",
	Long: `Fetch the schedule feed, build one table per day and room, and write
the PDF (plus the iCalendar export when ics_output is set).

When refresh holds a cron expression, the render repeats on that schedule
until interrupted. --once forces a single run.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().BoolVar(&renderOnce, "once", false, "Render once even if refresh is configured")
	rootCmd.AddCommand(renderCmd)
}

func newPipeline(c *config.Config) (*pipeline.Pipeline, error) {
	paginator := capture.Paginator{Timeout: time.Duration(c.RenderTimeoutSec) * time.Second}
	p, err := pipeline.New(c, paginator)
	if err != nil {
		return nil, printer.Error("Invalid break configuration", err.Error(), nil)
	}
	return p, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if renderOnce || cfg.Refresh == "" {
		return renderAndReport(ctx, p)
	}
	return schedule(ctx, cfg.Refresh, func(ctx context.Context) {
		// Scheduled failures are logged; the next tick retries.
		if _, err := p.Run(ctx); err != nil {
			appLog.Error("scheduled render failed", err)
		}
	})
}

func renderAndReport(ctx context.Context, p *pipeline.Pipeline) error {
	printer.Step("Fetching %s\n", cfg.FeedURL)
	res, err := p.Run(ctx)
	if err != nil {
		return reportError(err)
	}

	for _, skipped := range res.Report.Skipped {
		printer.Warning("Ignored %s\n", skipped.Error())
	}
	printer.Success("Wrote %s (%d days, %d rooms, %d events)\n",
		cfg.Output, res.Report.Days, res.Report.Rooms, res.Report.Events)
	if res.ICSPath != "" {
		printer.Success("Wrote %s\n", res.ICSPath)
	}
	return nil
}

// schedule runs job immediately, then on every tick of expr until ctx is
// canceled. Overlapping ticks are skipped.
func schedule(ctx context.Context, expr string, job func(context.Context)) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(expr, func() { job(ctx) }); err != nil {
		return printer.Error("Invalid refresh schedule", err.Error(), nil)
	}

	appLog.Info("refresh scheduled", "cron", expr)
	job(ctx)

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
