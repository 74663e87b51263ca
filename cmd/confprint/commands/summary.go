package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"confprint/internal/printer"
	"confprint/internal/timetable"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the timetable as text tables without writing a PDF",
	Long: `Fetch the schedule and print every day and room table exactly as it
would be paginated, breaks and gaps included. Nothing is written to disk.`,
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	conf, report, err := p.Load(ctx)
	if err != nil {
		return reportError(err)
	}
	doc, err := p.Builder().Build(conf)
	if err != nil {
		return reportError(err)
	}

	printer.Println(doc.Title)
	for _, day := range doc.Days {
		for _, room := range day.Rooms {
			printer.Printf("\n%s - %s %s\n", day.Title, doc.Labels.Room, room.Room)
			header, rows := summaryRows(doc.Labels, room)
			if err := printer.Table(os.Stdout, header, rows); err != nil {
				return fmt.Errorf("summary: %w", err)
			}
		}
	}
	printer.Println()
	printer.Success("%d days, %d rooms, %d events, %d persons (%s layout)\n",
		report.Days, report.Rooms, report.Events, report.Persons, report.Variant)
	return nil
}

// summaryRows flattens a room table. Separators become an empty line.
func summaryRows(labels timetable.Labels, room timetable.RoomTable) ([]string, [][]string) {
	header := []string{labels.Time, labels.Talk, ""}
	rows := make([][]string, 0, len(room.Rows))
	for _, r := range room.Rows {
		if r.Separator {
			rows = append(rows, []string{"", "", ""})
			continue
		}
		rows = append(rows, []string{r.Time, r.Title, r.Persons})
	}
	return header, rows
}
