package timetable

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confprint/internal/config"
	"confprint/internal/feed"
	"confprint/internal/model"
)

// 2022-11-19 is a Saturday, 2022-11-20 a Sunday.
const program = `<schedule>
  <conference><title>Capitole du Libre 2022</title></conference>
  <day date="2022-11-19">
    <room name="Amphi">
      <event id="3"><title>Après-midi</title><start>14:00</start><duration>01:00</duration></event>
      <event id="1"><title>Ouverture</title><start>09:30</start><duration>01:15</duration>
        <persons><person id="a">Alice</person><person id="b">Bob</person></persons></event>
      <event id="2"><title>Matinée</title><start>11:15</start><duration>00:45</duration>
        <persons><person id="c">Carol</person></persons></event>
    </room>
    <room name="Salle d'attente">
      <event id="4"><title>Accueil</title><start>09:00</start><duration>08:00</duration></event>
    </room>
    <room name="Vide"/>
  </day>
  <day date="2022-11-20">
    <room name="Amphi">
      <event id="5"><title>Clôture</title><start>11:00</start><duration>01:30</duration></event>
    </room>
  </day>
</schedule>`

func parseProgram(t *testing.T, doc string) *model.Conference {
	t.Helper()
	conf := model.NewConference("https://example.test/schedule.xml")
	_, err := feed.ParseReader(conf, strings.NewReader(doc))
	require.NoError(t, err)
	return conf
}

func defaultBuilder(t *testing.T) *Builder {
	t.Helper()
	cfg := config.DefaultConfig()
	rules, err := CompileBreaks(cfg.Breaks)
	require.NoError(t, err)
	return NewBuilder(Options{
		Label:    "Capitole du Libre 2022",
		Excluded: cfg.IsExcluded,
		Breaks:   rules,
		Format:   NewFormatter(cfg.Locale),
	})
}

func TestBuild_BreaksAndGaps(t *testing.T) {
	conf := parseProgram(t, program)
	doc, err := defaultBuilder(t).Build(conf)
	require.NoError(t, err)

	require.Len(t, doc.Days, 2)
	sat := doc.Days[0]
	assert.Equal(t, "samedi 19 novembre", sat.Title)
	require.Len(t, sat.Rooms, 1, "excluded and empty rooms get no table")
	assert.Equal(t, "Amphi", sat.Rooms[0].Room)

	type line struct {
		sep   bool
		id    string
		time  string
		brk   bool
		names string
	}
	var got []line
	for _, r := range sat.Rooms[0].Rows {
		got = append(got, line{sep: r.Separator, id: r.EventID, time: r.Time, brk: r.Break, names: r.Persons})
	}
	want := []line{
		{id: "1", time: "09h30 à 10h45", names: "Alice et Bob"},
		{sep: true},
		{id: "2", time: "11h15 à 12h00", names: "Carol"},
		{sep: true},
		{id: "9000", time: "12h30 à 14h00", brk: true},
		{id: "3", time: "14h00 à 15h00"},
		{sep: true},
		{id: "9001", time: "16h00 à 16h30", brk: true},
	}
	assert.Equal(t, want, got)
}

func TestBuild_NoAfternoonBreakOnSunday(t *testing.T) {
	conf := parseProgram(t, program)
	doc, err := defaultBuilder(t).Build(conf)
	require.NoError(t, err)

	sun := doc.Days[1]
	assert.Equal(t, "dimanche 20 novembre", sun.Title)
	require.Len(t, sun.Rooms, 1)
	events := sun.Rooms[0].Events()
	require.Len(t, events, 2)
	assert.Equal(t, "5", events[0].EventID)
	assert.Equal(t, "9000", events[1].EventID)
	assert.True(t, events[1].Break)
	// 11:00-12:30 then lunch at 12:30: back to back, no separator.
	assert.Len(t, sun.Rooms[0].Rows, 2)
}

func TestBuild_DoesNotMutateModel(t *testing.T) {
	conf := parseProgram(t, program)
	b := defaultBuilder(t)

	first, err := b.Build(conf)
	require.NoError(t, err)
	second, err := b.Build(conf)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	room := conf.Rooms()["Amphi"]
	assert.Len(t, room.Events(), 4)
	assert.False(t, conf.HasEventID("9000"))
}

func TestBuild_BreakIDsAvoidFeedIDs(t *testing.T) {
	doc := `<schedule><day date="2022-11-19"><room name="Amphi">
  <event id="9000"><title>Déjà pris</title><start>09:00</start><duration>01:00</duration></event>
</room></day></schedule>`
	conf := parseProgram(t, doc)
	out, err := defaultBuilder(t).Build(conf)
	require.NoError(t, err)

	var ids []string
	for _, r := range out.Days[0].Rooms[0].Events() {
		ids = append(ids, r.EventID)
	}
	assert.Equal(t, []string{"9000", "9001", "9002"}, ids)
}

func TestBuild_StableTies(t *testing.T) {
	doc := `<schedule><day date="2022-11-19"><room name="Amphi">
  <event id="late"><start>10:00</start><duration>00:30</duration></event>
  <event id="tie1"><start>09:00</start><duration>00:30</duration></event>
  <event id="tie2"><start>09:00</start><duration>00:30</duration></event>
</room></day></schedule>`
	conf := parseProgram(t, doc)
	out, err := NewBuilder(Options{}).Build(conf)
	require.NoError(t, err)

	var ids []string
	for _, r := range out.Days[0].Rooms[0].Events() {
		ids = append(ids, r.EventID)
	}
	assert.Equal(t, []string{"tie1", "tie2", "late"}, ids)
}

func TestWriteHTML(t *testing.T) {
	conf := parseProgram(t, program)
	doc, err := defaultBuilder(t).Build(conf)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, doc))
	html := buf.String()

	assert.Contains(t, html, `data-ready="true"`)
	assert.Contains(t, html, `href="style.css"`)
	assert.Contains(t, html, "samedi 19 novembre")
	assert.Contains(t, html, "Salle Amphi")
	assert.Contains(t, html, "09h30 à 10h45")
	assert.Contains(t, html, "Alice et Bob")
	assert.Contains(t, html, "Pause déjeuner")
	assert.NotContains(t, html, "Accueil")
	// Only the two events with speakers get a persons line.
	assert.Equal(t, 2, strings.Count(html, `class="event_persons"`))
	assert.Equal(t, 3, strings.Count(html, `class="gap"`))
}

func TestFormatterFallback(t *testing.T) {
	f := NewFormatter("xx_XX")
	conf := parseProgram(t, program)
	day := conf.Days()[0]

	assert.Equal(t, fallbackLocale, f.Locale())
	assert.Equal(t, "Saturday 19 November", f.DayTitle(day.Date))
	assert.Equal(t, "09:30 to 10:45", f.TimeRange(day.Date.Add(9*time.Hour+30*time.Minute), day.Date.Add(10*time.Hour+45*time.Minute)))
}

func TestFormatterAcceptsBCP47(t *testing.T) {
	assert.Equal(t, "fr_FR", string(NewFormatter("fr-FR").Locale()))
	assert.Equal(t, "fr_FR", string(NewFormatter("fr").Locale()))
}

func TestCompileBreaksErrors(t *testing.T) {
	_, err := CompileBreaks([]config.BreakConfig{{ID: 1, Start: "noon", Duration: "01:00"}})
	assert.Error(t, err)
	_, err = CompileBreaks([]config.BreakConfig{{ID: 1, Start: "12:00", Duration: "01:00", Rule: "FREQ=NEVER"}})
	assert.Error(t, err)
}

type fakePaginator struct {
	out   []byte
	err   error
	calls int
	css   []byte
}

func (f *fakePaginator) Paginate(_ context.Context, html, css []byte) ([]byte, error) {
	f.calls++
	f.css = css
	return f.out, f.err
}

func newRenderer(t *testing.T, p Paginator) (*Renderer, string) {
	t.Helper()
	dir := t.TempDir()
	css := filepath.Join(dir, "style.css")
	require.NoError(t, os.WriteFile(css, []byte("body { margin: 0 }"), 0o644))
	return &Renderer{
		Builder:    defaultBuilder(t),
		Paginator:  p,
		Stylesheet: css,
		Output:     filepath.Join(dir, "out", "program.pdf"),
	}, dir
}

func TestRender_ReplacesOutput(t *testing.T) {
	conf := parseProgram(t, program)
	p := &fakePaginator{out: []byte("%PDF-first")}
	r, dir := newRenderer(t, p)

	_, err := r.Render(context.Background(), conf)
	require.NoError(t, err)
	assert.Equal(t, []byte("body { margin: 0 }"), p.css)

	p.out = []byte("%PDF-second")
	res, err := r.Render(context.Background(), conf)
	require.NoError(t, err)
	assert.Equal(t, len("%PDF-second"), res.Bytes)

	data, err := os.ReadFile(r.Output)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-second", string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files or leftovers")
}

func TestRender_FailureLeavesNoOutput(t *testing.T) {
	conf := parseProgram(t, program)
	p := &fakePaginator{err: errors.New("chrome crashed")}
	r, _ := newRenderer(t, p)

	_, err := r.Render(context.Background(), conf)
	var rerr *RenderError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "paginate", rerr.Stage)

	_, statErr := os.Stat(r.Output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRender_MissingStylesheet(t *testing.T) {
	conf := parseProgram(t, program)
	p := &fakePaginator{out: []byte("%PDF")}
	r, _ := newRenderer(t, p)
	r.Stylesheet = filepath.Join(t.TempDir(), "missing.css")

	_, err := r.Render(context.Background(), conf)
	var rerr *RenderError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "stylesheet", rerr.Stage)
	assert.Zero(t, p.calls)
}

func TestReplaceFile_MissingPreviousIsFine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program.pdf")
	require.NoError(t, ReplaceFile(path, []byte("a")))
	require.NoError(t, ReplaceFile(path, []byte("b")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))
}
