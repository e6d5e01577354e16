package model

import "time"

// CheckinSession is a point-in-time snapshot of one open redemption window.
// The live state is owned by the checkin registry; snapshots never mutate it.
type CheckinSession struct {
	ID            string    `json:"id"`
	ClassID       string    `json:"class_id"`
	IssuedAt      time.Time `json:"issued_at"`
	ExpiresAt     time.Time `json:"expires_at"`
	Active        bool      `json:"active"`
	RedeemedCount int       `json:"redeemed_count"`
}
