package dto

import "time"

type AttendanceEntryResponse struct {
	EntryID    string    `json:"entry_id"`
	MemberID   int64     `json:"member_id"`
	Status     string    `json:"status"`
	RedeemedAt time.Time `json:"redeemed_at"`
	SessionID  string    `json:"session_id"`
}

type AttendanceListResponse struct {
	ClassID string                    `json:"class_id"`
	DayKey  string                    `json:"day_key"`
	Entries []AttendanceEntryResponse `json:"entries"`
}
