package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	require.NoError(t, err)
	return d
}

func newTalk(t *testing.T, c *Conference, day *Day, room *Room, id, start, duration string) *Event {
	t.Helper()
	e, created := c.ResolveEvent(id)
	require.True(t, created)
	var err error
	e.Start, err = ParseClock(start)
	require.NoError(t, err)
	e.Duration, err = ParseClock(duration)
	require.NoError(t, err)
	e.Day = day
	e.Room = room
	day.AddRoom(room)
	day.AddEvent(e)
	room.AddEvent(e)
	return e
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()
	calls := 0
	factory := func() *Person {
		calls++
		return &Person{ID: "42"}
	}

	first, created := Resolve(r, EntityPerson, "42", factory)
	require.True(t, created)
	second, created := Resolve(r, EntityPerson, "42", factory)
	require.False(t, created)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
	assert.NotNil(t, first.events, "initializer should set up containers")
	assert.Equal(t, 1, r.Len())
}

func TestRegistryKindsDoNotCollide(t *testing.T) {
	c := NewConference("http://example.test/schedule.xml")
	p := c.ResolvePerson("7")
	e, _ := c.ResolveEvent("7")

	assert.Equal(t, "7", p.ID)
	assert.Equal(t, "7", e.ID)
	assert.Equal(t, 2, c.Registry().Len())
}

func TestConferenceIdentity(t *testing.T) {
	c := NewConference("http://example.test/schedule.xml")
	date := mustDate(t, "2022-11-19")

	assert.Same(t, c.ResolveDay(date), c.ResolveDay(date))
	assert.Same(t, c.ResolveRoom("Salle A"), c.ResolveRoom("Salle A"))
	assert.Same(t, c.ResolvePerson("p1"), c.ResolvePerson("p1"))

	e1, created := c.ResolveEvent("1")
	require.True(t, created)
	e2, created := c.ResolveEvent("1")
	require.False(t, created)
	assert.Same(t, e1, e2)

	assert.Len(t, c.Days(), 1)
	assert.True(t, c.HasEventID("1"))
	assert.False(t, c.HasEventID("2"))
}

func TestEventTiming(t *testing.T) {
	c := NewConference("")
	day := c.ResolveDay(mustDate(t, "2022-11-19"))
	room := c.ResolveRoom("Salle A")
	e := newTalk(t, c, day, room, "1", "09:30", "01:15")

	assert.Equal(t, time.Date(2022, 11, 19, 9, 30, 0, 0, time.UTC), e.StartAt())
	assert.Equal(t, time.Date(2022, 11, 19, 10, 45, 0, 0, time.UTC), e.EndAt())
}

func TestSortedEventsForDayIsStable(t *testing.T) {
	c := NewConference("")
	day := c.ResolveDay(mustDate(t, "2022-11-19"))
	room := c.ResolveRoom("Salle A")

	late := newTalk(t, c, day, room, "a", "10:00", "00:30")
	tiedFirst := newTalk(t, c, day, room, "b", "09:00", "00:30")
	tiedSecond := newTalk(t, c, day, room, "c", "09:00", "00:30")

	got := room.SortedEventsForDay(day)
	require.Len(t, got, 3)
	assert.Same(t, tiedFirst, got[0])
	assert.Same(t, tiedSecond, got[1])
	assert.Same(t, late, got[2])
}

func TestRoomSpansDays(t *testing.T) {
	c := NewConference("")
	sat := c.ResolveDay(mustDate(t, "2022-11-19"))
	sun := c.ResolveDay(mustDate(t, "2022-11-20"))
	room := c.ResolveRoom("Salle A")

	e1 := newTalk(t, c, sat, room, "1", "09:00", "01:00")
	e2 := newTalk(t, c, sun, room, "2", "09:00", "01:00")

	assert.Len(t, room.Days(), 2)
	assert.Equal(t, map[string]*Event{"1": e1}, room.EventsForDay(sat))
	assert.Equal(t, map[string]*Event{"2": e2}, room.EventsForDay(sun))
	assert.Len(t, room.Events(), 2)
}

func TestRoomRemoveEvent(t *testing.T) {
	c := NewConference("")
	day := c.ResolveDay(mustDate(t, "2022-11-19"))
	room := c.ResolveRoom("Salle A")
	e := newTalk(t, c, day, room, "1", "09:00", "01:00")

	room.RemoveEvent(e)
	assert.Empty(t, room.Events())
	assert.Empty(t, room.EventsForDay(day))
}

func TestConferenceViews(t *testing.T) {
	c := NewConference("")
	sat := c.ResolveDay(mustDate(t, "2022-11-19"))
	sun := c.ResolveDay(mustDate(t, "2022-11-20"))
	a := c.ResolveRoom("Salle A")
	b := c.ResolveRoom("Salle B")

	e1 := newTalk(t, c, sat, a, "1", "09:00", "01:00")
	e2 := newTalk(t, c, sun, a, "2", "09:00", "01:00")
	e3 := newTalk(t, c, sun, b, "3", "10:00", "01:00")

	alice := c.ResolvePerson("p1")
	alice.Name = "Alice"
	e1.AddPerson(alice)
	e3.AddPerson(alice)

	assert.Equal(t, map[string]*Room{"Salle A": a, "Salle B": b}, c.Rooms())
	assert.Equal(t, map[string]*Event{"1": e1, "2": e2, "3": e3}, c.Events())
	assert.Equal(t, map[string]*Person{"p1": alice}, c.Persons())
	assert.Equal(t, []*Event{e1, e3}, alice.Events())
	assert.Equal(t, []*Room{a, b}, sun.Rooms())
}

func TestPersonsDisplay(t *testing.T) {
	tests := []struct {
		name     string
		persons  []string
		expected string
	}{
		{name: "no persons", persons: nil, expected: ""},
		{name: "one person", persons: []string{"Alice"}, expected: "Alice"},
		{name: "two persons", persons: []string{"Alice", "Bob"}, expected: "Alice et Bob"},
		{name: "three persons", persons: []string{"Alice", "Bob", "Carol"}, expected: "Alice, Bob et Carol"},
		{name: "four persons", persons: []string{"Alice", "Bob", "Carol", "Dan"}, expected: "Alice, Bob, Carol et Dan"},
		{name: "only blank name", persons: []string{""}, expected: ""},
		{name: "blank name skipped", persons: []string{"", "Bob"}, expected: "Bob"},
		{name: "whitespace name skipped", persons: []string{"Alice", " ", "Carol"}, expected: "Alice et Carol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConference("")
			e, _ := c.ResolveEvent("1")
			for i, name := range tt.persons {
				p := c.ResolvePerson(string(rune('a' + i)))
				p.Name = name
				e.AddPerson(p)
			}
			assert.Equal(t, tt.expected, e.PersonsDisplay())
		})
	}
}

func TestNewBreak(t *testing.T) {
	c := NewConference("")
	day := c.ResolveDay(mustDate(t, "2022-11-19"))
	room := c.ResolveRoom("Salle A")

	b := NewBreak("9000", "Pause déjeuner", day, room, 12*time.Hour+30*time.Minute, 90*time.Minute)
	assert.Equal(t, KindBreak, b.Kind)
	assert.Empty(t, b.Persons())
	assert.Empty(t, b.PersonsDisplay())
	assert.False(t, c.HasEventID("9000"), "breaks are not registered")
	assert.Empty(t, room.Events(), "breaks are not attached to the room")
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "09:30", want: 9*time.Hour + 30*time.Minute},
		{in: "01:15", want: time.Hour + 15*time.Minute},
		{in: "00:45:30", want: 45*time.Minute + 30*time.Second},
		{in: " 12:00 ", want: 12 * time.Hour},
		{in: "", wantErr: true},
		{in: "9h30", wantErr: true},
		{in: "10:75", wantErr: true},
		{in: "1:2:3:4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "09:30", FormatClock(9*time.Hour+30*time.Minute))
}
