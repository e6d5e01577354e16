package model

import "time"

// ScheduleSlot is one recurring meeting of a class. Start and end are
// minutes from local midnight on the given weekday.
type ScheduleSlot struct {
	Weekday     time.Weekday `json:"weekday"`
	StartMinute int          `json:"start_minute"`
	EndMinute   int          `json:"end_minute"`
}
