package dto

import "time"

type IssueRequest struct {
	ClassID     string `json:"class_id"`
	DurationMin int    `json:"duration_min,omitempty"`
}

type IssueResponse struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	ClassID   string    `json:"class_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RedeemRequest struct {
	Token string `json:"token"`
}

type RedeemResponse struct {
	EntryID    string    `json:"entry_id"`
	ClassID    string    `json:"class_id"`
	Status     string    `json:"status"`
	RedeemedAt time.Time `json:"redeemed_at"`
}

type RevokeRequest struct {
	SessionID string `json:"session_id"`
}

type RevokeResponse struct {
	OK bool `json:"ok"`
}

type ActiveSessionResponse struct {
	Active        bool      `json:"active"`
	SessionID     string    `json:"session_id,omitempty"`
	ClassID       string    `json:"class_id,omitempty"`
	IssuedAt      time.Time `json:"issued_at,omitempty"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"`
	RedeemedCount int       `json:"redeemed_count,omitempty"`
}
