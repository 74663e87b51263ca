package commands

import (
	"github.com/spf13/cobra"

	"confprint/internal/printer"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export-ics",
	Short: "Write the program as an iCalendar file",
	Long: `Fetch the schedule and write every feed event as a VEVENT. Synthetic
breaks are not exported. Event UIDs are stable across runs.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Target .ics path (overrides ics_output)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportOutput != "" {
		cfg.ICSOutput = exportOutput
	}
	if cfg.ICSOutput == "" {
		return printer.Error(
			"No calendar output configured",
			"export-ics needs a target file.",
			[]string{"Pass --output program.ics", "Set ics_output in the config file"},
		)
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	report, err := p.ExportICS(ctx)
	if err != nil {
		return reportError(err)
	}
	printer.Success("Wrote %s (%d events)\n", cfg.ICSOutput, report.Events)
	return nil
}
