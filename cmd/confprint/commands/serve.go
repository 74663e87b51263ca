package commands

import (
	"context"

	"github.com/spf13/cobra"

	appLog "confprint/internal/log"
	"confprint/internal/printer"
	"confprint/internal/web"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Render, then serve the timetable preview over HTTP",
	Long: `Render the timetable and serve the HTML preview, the stylesheet and the
last PDF:

  /timetable       HTML preview
  /timetable.pdf   last written PDF
  /api/status      JSON render status
  /health          liveness (never behind Basic Auth)

When refresh is configured the render repeats on that schedule.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "HTTP listen address (overrides config if set)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveListen != "" {
		cfg.Listen = serveListen
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	srv := web.NewServer(cfg.BasicAuth)
	p.SetPreview(srv)

	ctx, cancel := signalContext()
	defer cancel()

	job := func(ctx context.Context) {
		if _, err := p.Run(ctx); err != nil {
			appLog.Error("render failed", err)
		}
	}

	if cfg.Refresh == "" {
		job(ctx)
	} else {
		go func() {
			if err := schedule(ctx, cfg.Refresh, job); err != nil {
				cancel()
			}
		}()
	}

	if err := srv.ListenAndServe(ctx, cfg.Listen); err != nil {
		return printer.Error("HTTP server failed", err.Error(), []string{"Pick another address with --listen"})
	}
	return nil
}
