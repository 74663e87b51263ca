package timetable

import (
	"fmt"
	"strconv"
	"time"

	"github.com/teambition/rrule-go"

	"confprint/internal/config"
	"confprint/internal/model"
)

// BreakRule is a compiled break definition.
type BreakRule struct {
	ID       int
	Title    string
	Start    time.Duration
	Duration time.Duration
	// Rule is the raw RRULE deciding which dates get the break.
	Rule string
}

// CompileBreaks validates break definitions from the configuration.
func CompileBreaks(cfgs []config.BreakConfig) ([]BreakRule, error) {
	rules := make([]BreakRule, 0, len(cfgs))
	for i, c := range cfgs {
		start, err := model.ParseClock(c.Start)
		if err != nil {
			return nil, fmt.Errorf("break %d start: %w", i, err)
		}
		dur, err := model.ParseClock(c.Duration)
		if err != nil {
			return nil, fmt.Errorf("break %d duration: %w", i, err)
		}
		rule := c.Rule
		if rule == "" {
			rule = "FREQ=DAILY"
		}
		if _, err := rrule.StrToRRule(rule); err != nil {
			return nil, fmt.Errorf("break %d rule: %w", i, err)
		}
		rules = append(rules, BreakRule{
			ID:       c.ID,
			Title:    c.Title,
			Start:    start,
			Duration: dur,
			Rule:     rule,
		})
	}
	return rules, nil
}

// breakPlan holds the rules bound to one conference: recurrences anchored
// on its first day and ids that do not clash with the feed.
type breakPlan struct {
	rules []BreakRule
	ids   []string
	sets  []*rrule.RRule
}

func planBreaks(conf *model.Conference, rules []BreakRule) (*breakPlan, error) {
	plan := &breakPlan{rules: rules}
	days := conf.Days()
	if len(days) == 0 {
		return plan, nil
	}

	anchor := days[0].Date
	for _, d := range days[1:] {
		if d.Date.Before(anchor) {
			anchor = d.Date
		}
	}

	used := make(map[string]bool)
	for _, rule := range rules {
		r, err := rrule.StrToRRule(rule.Rule)
		if err != nil {
			return nil, fmt.Errorf("break %q rule: %w", rule.Title, err)
		}
		r.DTStart(anchor)
		plan.sets = append(plan.sets, r)

		id := rule.ID
		for conf.HasEventID(strconv.Itoa(id)) || used[strconv.Itoa(id)] {
			id++
		}
		used[strconv.Itoa(id)] = true
		plan.ids = append(plan.ids, strconv.Itoa(id))
	}
	return plan, nil
}

// forRoomDay builds the break entries for room on day. They are never
// attached to the model.
func (p *breakPlan) forRoomDay(day *model.Day, room *model.Room) []*model.Event {
	var out []*model.Event
	dayEnd := day.Date.Add(24*time.Hour - time.Nanosecond)
	for i, rule := range p.rules {
		if len(p.sets[i].Between(day.Date, dayEnd, true)) == 0 {
			continue
		}
		out = append(out, model.NewBreak(p.ids[i], rule.Title, day, room, rule.Start, rule.Duration))
	}
	return out
}
