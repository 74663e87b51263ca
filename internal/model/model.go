package model

import (
	"slices"
	"time"
)

// Conference is the root of a parsed schedule. It owns the identity
// registry, so every Day, Room, Event and Person reachable from it is
// unique per key within this conference.
type Conference struct {
	// URL is the feed the conference was (or will be) parsed from.
	URL string

	Title     string
	Subtitle  string
	Venue     string
	City      string
	StartDate string
	EndDate   string
	DaysCount string

	// Extra holds conference children the parser has no field for.
	Extra map[string]string

	registry *Registry
	days     map[string]*Day
	dayOrder []*Day
}

// NewConference returns an empty conference bound to a feed URL.
func NewConference(url string) *Conference {
	return &Conference{
		URL:      url,
		Extra:    make(map[string]string),
		registry: NewRegistry(),
		days:     make(map[string]*Day),
	}
}

// String returns the conference title.
func (c *Conference) String() string {
	return c.Title
}

// Registry exposes the conference's identity registry.
func (c *Conference) Registry() *Registry {
	return c.registry
}

// ResolveDay returns the Day for date, creating and attaching it on first use.
func (c *Conference) ResolveDay(date time.Time) *Day {
	key := date.Format(DateLayout)
	d, created := Resolve(c.registry, EntityDay, key, func() *Day {
		return &Day{Date: time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)}
	})
	if created {
		c.days[key] = d
		c.dayOrder = append(c.dayOrder, d)
	}
	return d
}

// ResolveRoom returns the Room called name. Rooms are keyed by name only,
// so the same room seen on several days is one instance.
func (c *Conference) ResolveRoom(name string) *Room {
	r, _ := Resolve(c.registry, EntityRoom, name, func() *Room {
		return &Room{Name: name}
	})
	return r
}

// ResolveEvent returns the Event with id and whether it was created now.
func (c *Conference) ResolveEvent(id string) (*Event, bool) {
	return Resolve(c.registry, EntityEvent, id, func() *Event {
		return &Event{ID: id, Kind: KindTalk}
	})
}

// ResolvePerson returns the Person with id.
func (c *Conference) ResolvePerson(id string) *Person {
	p, _ := Resolve(c.registry, EntityPerson, id, func() *Person {
		return &Person{ID: id}
	})
	return p
}

// HasEventID reports whether the feed defined an event with id.
func (c *Conference) HasEventID(id string) bool {
	_, ok := Lookup[Event](c.registry, EntityEvent, id)
	return ok
}

// Days returns the days in discovery order.
func (c *Conference) Days() []*Day {
	return slices.Clone(c.dayOrder)
}

// Day returns the day for date, if any.
func (c *Conference) Day(date time.Time) (*Day, bool) {
	d, ok := c.days[date.Format(DateLayout)]
	return d, ok
}

// Rooms merges every day's rooms. A later day wins on a key collision,
// which is harmless since rooms are deduplicated by name.
func (c *Conference) Rooms() map[string]*Room {
	out := make(map[string]*Room)
	for _, d := range c.dayOrder {
		for _, r := range d.roomOrder {
			out[r.Name] = r
		}
	}
	return out
}

// Events merges every day's events.
func (c *Conference) Events() map[string]*Event {
	out := make(map[string]*Event)
	for _, d := range c.dayOrder {
		for _, e := range d.eventOrder {
			out[e.ID] = e
		}
	}
	return out
}

// Persons merges every day's speakers.
func (c *Conference) Persons() map[string]*Person {
	out := make(map[string]*Person)
	for _, d := range c.dayOrder {
		for id, p := range d.Persons() {
			out[id] = p
		}
	}
	return out
}

// Day is one calendar date of the conference.
type Day struct {
	Date time.Time

	rooms      map[string]*Room
	roomOrder  []*Room
	events     map[string]*Event
	eventOrder []*Event
}

func (d *Day) initContainers() {
	d.rooms = make(map[string]*Room)
	d.events = make(map[string]*Event)
}

// Key is the day's identity key, its date as YYYY-MM-DD.
func (d *Day) Key() string {
	return d.Date.Format(DateLayout)
}

// AddRoom attaches r to the day and records the day on r. Adding the same
// room twice is a no-op.
func (d *Day) AddRoom(r *Room) {
	if _, ok := d.rooms[r.Name]; !ok {
		d.rooms[r.Name] = r
		d.roomOrder = append(d.roomOrder, r)
	}
	r.addDay(d)
}

// AddEvent records e as happening on this day.
func (d *Day) AddEvent(e *Event) {
	if _, ok := d.events[e.ID]; ok {
		return
	}
	d.events[e.ID] = e
	d.eventOrder = append(d.eventOrder, e)
}

// Rooms returns the day's rooms in discovery order.
func (d *Day) Rooms() []*Room {
	return slices.Clone(d.roomOrder)
}

// Room returns the room called name if it was seen on this day.
func (d *Day) Room(name string) (*Room, bool) {
	r, ok := d.rooms[name]
	return r, ok
}

// Events returns the day's events in discovery order.
func (d *Day) Events() []*Event {
	return slices.Clone(d.eventOrder)
}

// Persons returns everyone speaking on this day.
func (d *Day) Persons() map[string]*Person {
	out := make(map[string]*Person)
	for _, e := range d.eventOrder {
		for _, p := range e.personOrder {
			out[p.ID] = p
		}
	}
	return out
}

// Room is a named venue. One Room instance spans every day it appears on.
type Room struct {
	Name string

	events     map[string]*Event
	eventOrder []*Event
	days       map[string]*Day
	dayOrder   []*Day
}

func (r *Room) initContainers() {
	r.events = make(map[string]*Event)
	r.days = make(map[string]*Day)
}

// String returns the room name.
func (r *Room) String() string {
	return r.Name
}

func (r *Room) addDay(d *Day) {
	if _, ok := r.days[d.Key()]; ok {
		return
	}
	r.days[d.Key()] = d
	r.dayOrder = append(r.dayOrder, d)
}

// AddEvent records e as hosted by this room.
func (r *Room) AddEvent(e *Event) {
	if _, ok := r.events[e.ID]; ok {
		return
	}
	r.events[e.ID] = e
	r.eventOrder = append(r.eventOrder, e)
}

// RemoveEvent drops e from the room. Used when a later room child moves an
// event already attached through nesting.
func (r *Room) RemoveEvent(e *Event) {
	if _, ok := r.events[e.ID]; !ok {
		return
	}
	delete(r.events, e.ID)
	r.eventOrder = slices.DeleteFunc(r.eventOrder, func(x *Event) bool { return x == e })
}

// Days returns the days the room appears on, in discovery order.
func (r *Room) Days() []*Day {
	return slices.Clone(r.dayOrder)
}

// Events returns every event of the room across all days.
func (r *Room) Events() []*Event {
	return slices.Clone(r.eventOrder)
}

// EventsForDay returns the room's events happening on day.
func (r *Room) EventsForDay(day *Day) map[string]*Event {
	out := make(map[string]*Event)
	for _, e := range r.eventOrder {
		if e.Day == day {
			out[e.ID] = e
		}
	}
	return out
}

// SortedEventsForDay returns the room's events on day ordered by start.
// Events starting at the same time keep their discovery order.
func (r *Room) SortedEventsForDay(day *Day) []*Event {
	events := make([]*Event, 0, len(r.eventOrder))
	for _, e := range r.eventOrder {
		if e.Day == day {
			events = append(events, e)
		}
	}
	SortEvents(events)
	return events
}

// SortEvents orders events by computed start time, keeping ties stable.
func SortEvents(events []*Event) {
	slices.SortStableFunc(events, func(a, b *Event) int {
		return a.StartAt().Compare(b.StartAt())
	})
}

// Kind separates feed events from entries synthesized for the timetable.
type Kind string

const (
	KindTalk  Kind = "talk"
	KindBreak Kind = "break"
)

// Event is one timetable slot.
type Event struct {
	ID    string
	Title string

	// Start is the offset from midnight of Day; Duration is the slot length.
	Start    time.Duration
	Duration time.Duration

	Kind Kind
	Day  *Day
	Room *Room

	// Extra holds every child element without a typed field, keyed by tag.
	Extra map[string]string

	persons     map[string]*Person
	personOrder []*Person
}

func (e *Event) initContainers() {
	e.Extra = make(map[string]string)
	e.persons = make(map[string]*Person)
}

// NewBreak builds a break entry that is not registered in any conference.
func NewBreak(id, title string, day *Day, room *Room, start, duration time.Duration) *Event {
	e := &Event{
		ID:       id,
		Title:    title,
		Start:    start,
		Duration: duration,
		Kind:     KindBreak,
		Day:      day,
		Room:     room,
	}
	e.initContainers()
	return e
}

// String returns the event title.
func (e *Event) String() string {
	return e.Title
}

// StartAt is the event's start on its day. A roomless or dayless event
// starts at the zero time.
func (e *Event) StartAt() time.Time {
	if e.Day == nil {
		return time.Time{}.Add(e.Start)
	}
	return e.Day.Date.Add(e.Start)
}

// EndAt is StartAt plus Duration.
func (e *Event) EndAt() time.Time {
	return e.StartAt().Add(e.Duration)
}

// AddPerson attaches p to the event and the event to p.
func (e *Event) AddPerson(p *Person) {
	if _, ok := e.persons[p.ID]; !ok {
		e.persons[p.ID] = p
		e.personOrder = append(e.personOrder, p)
	}
	p.addEvent(e)
}

// Persons returns the event's speakers in feed order.
func (e *Event) Persons() []*Person {
	return slices.Clone(e.personOrder)
}

// Person is a speaker.
type Person struct {
	ID   string
	Name string

	events     map[string]*Event
	eventOrder []*Event
}

func (p *Person) initContainers() {
	p.events = make(map[string]*Event)
}

// String returns the display name.
func (p *Person) String() string {
	return p.Name
}

func (p *Person) addEvent(e *Event) {
	if _, ok := p.events[e.ID]; ok {
		return
	}
	p.events[e.ID] = e
	p.eventOrder = append(p.eventOrder, e)
}

// Events returns every event the person appears in.
func (p *Person) Events() []*Event {
	return slices.Clone(p.eventOrder)
}
