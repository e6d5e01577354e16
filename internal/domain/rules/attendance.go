package rules

import (
	"time"

	"github.com/classpass/backend/internal/domain/enums"
	"github.com/classpass/backend/internal/domain/model"
)

const GracePeriod = 15 * time.Minute

func DayKey(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format("2006-01-02")
}

// SlotForDay returns the first schedule slot matching the weekday of now.
func SlotForDay(slots []model.ScheduleSlot, now time.Time, loc *time.Location) (model.ScheduleSlot, bool) {
	if loc == nil {
		loc = time.UTC
	}
	weekday := now.In(loc).Weekday()
	for _, slot := range slots {
		if slot.Weekday == weekday {
			return slot, true
		}
	}
	return model.ScheduleSlot{}, false
}

// ScheduledStart resolves the slot's start instant on the calendar day of now.
func ScheduledStart(slot model.ScheduleSlot, now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, slot.StartMinute, 0, 0, loc)
}

// ClassifyArrival marks a redemption late only when it lands strictly after
// the grace window. Arriving exactly at start+grace still counts as on time.
func ClassifyArrival(now, scheduledStart time.Time, grace time.Duration) enums.AttendanceStatus {
	if grace < 0 {
		grace = 0
	}
	if now.After(scheduledStart.Add(grace)) {
		return enums.AttendanceStatusLate
	}
	return enums.AttendanceStatusOnTime
}
