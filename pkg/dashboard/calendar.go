package dashboard

import "fmt"

// Weekdays heads the calendar grid.
var Weekdays = []string{"S", "M", "T", "W", "T", "F", "S"}

// Calendar is a one-month financial calendar.
type Calendar struct {
	Month string `yaml:"month" json:"month"`
	Days  int    `yaml:"days" json:"days"`
	// Offset is the number of blank cells before day 1.
	Offset   int   `yaml:"offset" json:"offset"`
	Selected int   `yaml:"selected" json:"selected"`
	Events   []int `yaml:"events" json:"events"`
}

// Day is one cell of the calendar grid. Blank cells pad the first week.
type Day struct {
	Number   int  `json:"number"`
	Blank    bool `json:"blank"`
	Event    bool `json:"event"`
	Selected bool `json:"selected"`
}

// CalendarView is the grid for one selected date.
type CalendarView struct {
	Month    string   `json:"month"`
	Weekdays []string `json:"weekdays"`
	Weeks    [][]Day  `json:"weeks"`
	Selected int      `json:"selected"`
}

func (c Calendar) validate() error {
	if c.Days < 1 || c.Days > 31 {
		return fmt.Errorf("dashboard: calendar days must be 1-31, got %d", c.Days)
	}
	if c.Offset < 0 || c.Offset > 6 {
		return fmt.Errorf("dashboard: calendar offset must be 0-6, got %d", c.Offset)
	}
	if !c.Valid(c.Selected) {
		return fmt.Errorf("dashboard: calendar selected day %d out of range", c.Selected)
	}
	return nil
}

// Valid reports whether day exists in the month.
func (c Calendar) Valid(day int) bool {
	return day >= 1 && day <= c.Days
}

// HasEvent reports whether day is marked as an event day.
func (c Calendar) HasEvent(day int) bool {
	for _, d := range c.Events {
		if d == day {
			return true
		}
	}
	return false
}

// View lays the month out in weeks with selected highlighted. Out of range
// selections fall back to the fixture's default date.
func (c Calendar) View(selected int) CalendarView {
	if !c.Valid(selected) {
		selected = c.Selected
	}

	var (
		weeks [][]Day
		week  []Day
	)
	for i := 0; i < c.Offset; i++ {
		week = append(week, Day{Blank: true})
	}
	for n := 1; n <= c.Days; n++ {
		week = append(week, Day{Number: n, Event: c.HasEvent(n), Selected: n == selected})
		if len(week) == len(Weekdays) {
			weeks = append(weeks, week)
			week = nil
		}
	}
	if len(week) > 0 {
		weeks = append(weeks, week)
	}

	return CalendarView{
		Month:    c.Month,
		Weekdays: Weekdays,
		Weeks:    weeks,
		Selected: selected,
	}
}
