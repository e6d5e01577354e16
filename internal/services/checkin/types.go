package checkin

import (
	"errors"
	"time"

	"github.com/classpass/backend/internal/domain/enums"
)

// Rejection taxonomy. Every one of these is a normal, expected outcome of a
// redemption attempt and is returned to the caller as-is; none indicate a
// defect. Anything else coming out of this package is a fault.
var (
	ErrValidation         = errors.New("validation error")
	ErrMalformedToken     = errors.New("malformed token")
	ErrTokenExpired       = errors.New("token expired")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrAlreadyRedeemed    = errors.New("already redeemed this session")
	ErrClassNotFound      = errors.New("class not found")
	ErrNotEnrolled        = errors.New("member not enrolled")
	ErrAlreadyMarkedToday = errors.New("already marked today")
)

// IssueResult is what the instructor gets back: the bearer token plus the
// session identity it redeems against.
type IssueResult struct {
	Token     string
	SessionID string
	ClassID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RedeemResult carries a snapshot of the session's timing fields taken at
// the instant the member was added to the redemption set.
type RedeemResult struct {
	SessionID  string
	ClassID    string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	RedeemedAt time.Time
}

// Notice is handed to the notification sink after a successful check-in.
// Delivery is fire-and-forget; the check-in result never depends on it.
type Notice struct {
	ClassID    string
	MemberID   int64
	Status     enums.AttendanceStatus
	RedeemedAt time.Time
}
