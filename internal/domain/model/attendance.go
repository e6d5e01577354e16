package model

import (
	"time"

	"github.com/classpass/backend/internal/domain/enums"
)

type AttendanceEntry struct {
	ID         string                 `json:"id"`
	ClassID    string                 `json:"class_id"`
	MemberID   int64                  `json:"member_id"`
	DayKey     string                 `json:"day_key"`
	RedeemedAt time.Time              `json:"redeemed_at"`
	Status     enums.AttendanceStatus `json:"status"`
	SessionID  string                 `json:"session_id"`
}
