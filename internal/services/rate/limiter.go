package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// redeemWindow is one fixed counting window of the redemption throttle.
type redeemWindow struct {
	name  string
	span  time.Duration
	limit int64
}

func (w redeemWindow) key(memberID int64) string {
	return "rate:redeem:" + w.name + ":" + strconv.FormatInt(memberID, 10)
}

// Limiter throttles redemption attempts per member with a sustained
// per-minute budget plus a short burst budget, so a member mashing the
// redeem button trips the burst window before eating the whole minute.
type Limiter struct {
	store   WindowStore
	windows []redeemWindow
}

// NewLimiter builds the redeem throttle. A zero or negative limit
// disables that window entirely.
func NewLimiter(store WindowStore, perMinute, per10Sec int) *Limiter {
	l := &Limiter{store: store}
	if perMinute > 0 {
		l.windows = append(l.windows, redeemWindow{name: "min", span: time.Minute, limit: int64(perMinute)})
	}
	if per10Sec > 0 {
		l.windows = append(l.windows, redeemWindow{name: "10s", span: 10 * time.Second, limit: int64(per10Sec)})
	}
	return l
}

// AllowRedeem counts one attempt against every window and reports whether
// it may proceed. Every window is charged even when an earlier one already
// blocked, so a blocked attempt still burns budget; the retry-after hint
// covers the longest violated window.
func (l *Limiter) AllowRedeem(ctx context.Context, memberID int64) (int64, bool, error) {
	if memberID <= 0 {
		return 0, false, fmt.Errorf("invalid member id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	var retryAfterSec int64
	for _, win := range l.windows {
		count, ttl, err := l.store.IncrementWindow(ctx, win.key(memberID), win.span)
		if err != nil {
			return 0, false, err
		}
		if count <= win.limit {
			continue
		}
		if sec := ceilSeconds(ttl); sec > retryAfterSec {
			retryAfterSec = sec
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}
	return 0, true, nil
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}
