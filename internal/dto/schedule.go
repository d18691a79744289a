package dto

import "time"

// CalendarEntry is an event rendered on the weekly calendar.
type CalendarEntry struct {
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// WeekSchedule is the normalized calendar for a teacher or a class.
type WeekSchedule struct {
	WeekStart time.Time       `json:"week_start"`
	Entries   []CalendarEntry `json:"entries"`
}
