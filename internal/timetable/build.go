package timetable

import (
	"slices"
	"time"

	appLog "confprint/internal/log"
	"confprint/internal/model"
)

// Document is the rendered timetable before it becomes HTML.
type Document struct {
	Title  string
	Label  string
	Labels Labels
	Days   []DaySection
}

// DaySection groups the room tables of one day.
type DaySection struct {
	Date  time.Time
	Title string
	Rooms []RoomTable
}

// RoomTable is one room's program for one day.
type RoomTable struct {
	Room string
	Rows []Row
}

// Row is a table line: either an event or a separator marking idle time.
type Row struct {
	Separator bool

	EventID string
	Break   bool
	Start   time.Time
	End     time.Time
	Time    string
	Title   string
	// Persons is empty when the event has no speakers; the persons line is
	// then left out entirely.
	Persons string
}

// Options configure a Builder.
type Options struct {
	// Label is printed in every room header.
	Label string
	// Excluded reports rooms that never get a table.
	Excluded func(room string) bool
	Breaks   []BreakRule
	Format   *Formatter
}

// Builder turns a parsed conference into a Document. It reads the model
// and never modifies it.
type Builder struct {
	opts Options
}

// NewBuilder returns a Builder. A nil Format defaults to French.
func NewBuilder(opts Options) *Builder {
	if opts.Format == nil {
		opts.Format = NewFormatter("fr_FR")
	}
	if opts.Excluded == nil {
		opts.Excluded = func(string) bool { return false }
	}
	return &Builder{opts: opts}
}

// Build walks days and rooms in discovery order.
func (b *Builder) Build(conf *model.Conference) (Document, error) {
	doc := Document{
		Title:  conf.Title,
		Label:  b.opts.Label,
		Labels: b.opts.Format.Labels(),
	}

	plan, err := planBreaks(conf, b.opts.Breaks)
	if err != nil {
		return doc, &RenderError{Stage: "breaks", Err: err}
	}

	for _, day := range conf.Days() {
		section := DaySection{
			Date:  day.Date,
			Title: b.opts.Format.DayTitle(day.Date),
		}
		for _, room := range day.Rooms() {
			table, ok := b.roomTable(plan, day, room)
			if !ok {
				continue
			}
			section.Rooms = append(section.Rooms, table)
		}
		doc.Days = append(doc.Days, section)
	}
	return doc, nil
}

func (b *Builder) roomTable(plan *breakPlan, day *model.Day, room *model.Room) (RoomTable, bool) {
	events := room.SortedEventsForDay(day)
	if len(events) == 0 {
		return RoomTable{}, false
	}
	if b.opts.Excluded(room.Name) {
		appLog.Debug("room excluded from timetable", "room", room.Name, "day", day.Key())
		return RoomTable{}, false
	}

	events = append(slices.Clone(events), plan.forRoomDay(day, room)...)
	model.SortEvents(events)

	table := RoomTable{Room: room.Name}
	for i, e := range events {
		if i > 0 && !events[i-1].EndAt().Equal(e.StartAt()) {
			table.Rows = append(table.Rows, Row{Separator: true})
		}
		table.Rows = append(table.Rows, b.row(e))
	}
	return table, true
}

func (b *Builder) row(e *model.Event) Row {
	names := make([]string, 0)
	for _, p := range e.Persons() {
		names = append(names, p.Name)
	}
	return Row{
		EventID: e.ID,
		Break:   e.Kind == model.KindBreak,
		Start:   e.StartAt(),
		End:     e.EndAt(),
		Time:    b.opts.Format.TimeRange(e.StartAt(), e.EndAt()),
		Title:   e.Title,
		Persons: model.JoinNames(names, b.opts.Format.Labels().And),
	}
}

// Events returns the event rows of the table, without separators.
func (t RoomTable) Events() []Row {
	out := make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		if !r.Separator {
			out = append(out, r)
		}
	}
	return out
}
