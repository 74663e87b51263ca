package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	appLog "confprint/internal/log"
	"confprint/internal/model"
)

// Variant names the two ways feeds list an event's speakers.
type Variant string

const (
	// VariantNested wraps speakers in <persons><person/></persons>.
	VariantNested Variant = "nested"
	// VariantFlat puts <person/> directly under <event>.
	VariantFlat Variant = "flat"
)

// Report summarizes one ingestion.
type Report struct {
	Days    int
	Rooms   int
	Events  int
	Persons int
	// Variant is the speaker layout of the first event that listed any.
	Variant Variant
	Skipped []UnrecognizedElement
}

// Parse fetches conf.URL and populates conf from it.
func Parse(ctx context.Context, f *Fetcher, conf *model.Conference) (Report, error) {
	body, err := f.Fetch(ctx, conf.URL)
	if err != nil {
		return Report{}, err
	}
	return ParseReader(conf, bytes.NewReader(body))
}

// ParseReader populates conf from a feed document.
func ParseReader(conf *model.Conference, r io.Reader) (Report, error) {
	root, err := readTree(r)
	if err != nil {
		return Report{}, err
	}

	in := &ingester{conf: conf}
	for _, n := range root.Children {
		switch n.Tag {
		case "conference":
			in.conference(n)
		case "day":
			if err := in.day(n); err != nil {
				return in.report, err
			}
		default:
			skipped := UnrecognizedElement{Tag: n.Tag, Line: n.Line}
			in.report.Skipped = append(in.report.Skipped, skipped)
			appLog.Warn("unrecognized element skipped", "tag", n.Tag, "line", n.Line)
		}
	}

	in.report.Days = len(conf.Days())
	in.report.Rooms = len(conf.Rooms())
	in.report.Events = len(conf.Events())
	in.report.Persons = len(conf.Persons())

	appLog.Info("feed parse completed",
		"days", in.report.Days,
		"rooms", in.report.Rooms,
		"events", in.report.Events,
		"persons", in.report.Persons,
		"variant", in.report.Variant,
		"skipped", len(in.report.Skipped),
	)
	return in.report, nil
}

type ingester struct {
	conf   *model.Conference
	report Report
}

func (in *ingester) conference(n *node) {
	c := in.conf
	for _, child := range n.Children {
		v := child.Text()
		switch child.Tag {
		case "title":
			c.Title = v
		case "subtitle":
			c.Subtitle = v
		case "venue":
			c.Venue = v
		case "city":
			c.City = v
		case "start", "start_date":
			c.StartDate = v
		case "end", "end_date":
			c.EndDate = v
		case "days", "days_count":
			c.DaysCount = v
		default:
			c.Extra[child.Tag] = v
		}
	}
}

func (in *ingester) day(n *node) error {
	raw, ok := n.Attr("date")
	if !ok || raw == "" {
		return &ParseError{Element: "day", Attr: "date", Line: n.Line, Err: errors.New("missing")}
	}
	date, err := time.Parse(model.DateLayout, raw)
	if err != nil {
		return &ParseError{Element: "day", Attr: "date", Line: n.Line, Err: err}
	}

	day := in.conf.ResolveDay(date)
	for _, child := range n.Children {
		switch child.Tag {
		case "room":
			if err := in.room(day, child); err != nil {
				return err
			}
		case "event":
			// Older feeds list events straight under the day and name the
			// room inside the event.
			if err := in.event(day, nil, child); err != nil {
				return err
			}
		default:
			appLog.Debug("ignoring day child", "tag", child.Tag, "line", child.Line)
		}
	}
	return nil
}

func (in *ingester) room(day *model.Day, n *node) error {
	name, ok := n.Attr("name")
	if !ok || name == "" {
		return &ParseError{Element: "room", Attr: "name", Line: n.Line, Err: errors.New("missing")}
	}

	room := in.conf.ResolveRoom(name)
	day.AddRoom(room)
	for _, child := range n.childrenNamed("event") {
		if err := in.event(day, room, child); err != nil {
			return err
		}
	}
	return nil
}

func (in *ingester) event(day *model.Day, room *model.Room, n *node) error {
	id, ok := n.Attr("id")
	if !ok || id == "" {
		return &ParseError{Element: "event", Attr: "id", Line: n.Line, Err: errors.New("missing")}
	}

	e, created := in.conf.ResolveEvent(id)
	if !created && e.Day != nil && e.Day != day {
		return &ParseError{
			Element: "event",
			Attr:    "id",
			Line:    n.Line,
			Err:     fmt.Errorf("id %s already used on %s", id, e.Day.Key()),
		}
	}
	e.Day = day

	speakers := speakerSourceFor(n)
	if speakers != nil && in.report.Variant == "" {
		in.report.Variant = speakers.variant()
	}

	var roomOverride string
	for _, child := range n.Children {
		switch child.Tag {
		case "persons", "person":
			// Handled by the speaker source below.
		case "room":
			roomOverride = child.Text()
		case "title":
			e.Title = child.Text()
		case "start":
			start, err := model.ParseClock(child.Text())
			if err != nil {
				return &ParseError{Element: "start", Line: child.Line, Err: fmt.Errorf("event %s: %w", id, err)}
			}
			e.Start = start
		case "duration":
			d, err := model.ParseClock(child.Text())
			if err != nil {
				return &ParseError{Element: "duration", Line: child.Line, Err: fmt.Errorf("event %s: %w", id, err)}
			}
			e.Duration = d
		default:
			e.Extra[child.Tag] = child.Text()
		}
	}

	if speakers != nil {
		for _, pn := range speakers.persons(n) {
			pid, ok := pn.Attr("id")
			if !ok || pid == "" {
				return &ParseError{Element: "person", Attr: "id", Line: pn.Line, Err: fmt.Errorf("event %s: missing", id)}
			}
			p := in.conf.ResolvePerson(pid)
			// A speaker repeated with empty text keeps the name seen earlier.
			if name := pn.Text(); name != "" {
				p.Name = name
			}
			e.AddPerson(p)
		}
	}

	target := room
	if roomOverride != "" {
		target = in.conf.ResolveRoom(roomOverride)
		day.AddRoom(target)
	}
	if target == nil {
		return &ParseError{Element: "event", Attr: "room", Line: n.Line, Err: fmt.Errorf("event %s has no room", id)}
	}
	if e.Room != nil && e.Room != target {
		e.Room.RemoveEvent(e)
	}
	e.Room = target
	target.AddEvent(e)
	day.AddEvent(e)
	return nil
}
