package commands

import (
	"errors"
	"fmt"

	"confprint/internal/feed"
	"confprint/internal/printer"
	"confprint/internal/timetable"
)

// reportError turns a pipeline failure into a formatted message.
func reportError(err error) error {
	title, suggestions := describeError(err)
	return printer.Error(title, err.Error(), suggestions)
}

func describeError(err error) (string, []string) {
	var fetchErr *feed.FetchError
	var parseErr *feed.ParseError
	var renderErr *timetable.RenderError

	switch {
	case errors.As(err, &fetchErr):
		if fetchErr.Status != 0 {
			return fmt.Sprintf("Schedule feed returned HTTP %d", fetchErr.Status),
				[]string{"Check feed_url in the config file or CONFPRINT_FEED_URL"}
		}
		return "Schedule feed unreachable", []string{
			"Check your network connection",
			"Raise fetch_timeout_sec if the server is slow",
		}
	case errors.As(err, &parseErr):
		return "Schedule feed is malformed", []string{"Report the feed error to the conference organizers"}
	case errors.As(err, &renderErr):
		switch renderErr.Stage {
		case "stylesheet":
			return "Stylesheet not readable", []string{"Check the stylesheet path in the config file"}
		case "paginate":
			return "PDF generation failed", []string{
				"Make sure Chrome or Chromium is installed",
				"Raise render_timeout_sec for large programs",
			}
		case "write":
			return "Could not write the output file", []string{"Check that the output directory is writable"}
		}
		return "Rendering failed", nil
	}
	return "confprint failed", nil
}
