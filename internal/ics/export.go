package ics

import (
	"io"
	"time"
	_ "time/tzdata"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"confprint/internal/model"
)

const productID = "-//confprint//timetable//FR"

// ExportOptions controls calendar export.
type ExportOptions struct {
	// Location is the conference timezone. Feed times are wall-clock times
	// in that zone. Nil means UTC.
	Location *time.Location
	// Now stamps DTSTAMP; zero means time.Now().
	Now time.Time
}

// Build converts every feed event of conf into a VEVENT. Synthetic breaks
// are not part of the model and are not exported.
func Build(conf *model.Conference, opts ExportOptions) *ical.Calendar {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, day := range conf.Days() {
		for _, e := range day.Events() {
			ev := cal.AddEvent(EventUID(conf.URL, e.ID))
			ev.SetDtStampTime(now)
			ev.SetStartAt(inLocation(e.StartAt(), loc))
			ev.SetEndAt(inLocation(e.EndAt(), loc))
			ev.SetSummary(e.Title)
			if e.Room != nil {
				ev.SetLocation(e.Room.Name)
			}
			if names := e.PersonsDisplay(); names != "" {
				ev.SetDescription(names)
			}
		}
	}
	return cal
}

// Export writes the calendar of conf to w.
func Export(w io.Writer, conf *model.Conference, opts ExportOptions) error {
	_, err := io.WriteString(w, Build(conf, opts).Serialize())
	return err
}

// EventUID derives a stable UID so re-imports update instead of duplicate.
func EventUID(feedURL, eventID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(feedURL+"#event-"+eventID)).String()
}

// inLocation reinterprets a wall-clock time as being in loc.
func inLocation(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

// ConferenceLocation returns the timezone declared by the feed
// (time_zone_name), or UTC.
func ConferenceLocation(conf *model.Conference) *time.Location {
	name := conf.Extra["time_zone_name"]
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
