package checkin

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/classpass/backend/internal/domain/model"
)

// session is the registry-owned live state of one redemption window. The
// redemption set and the active flag are guarded by the session's own mutex
// so contended redemptions on one session never serialize other sessions.
type session struct {
	mu sync.Mutex

	id        string
	classID   string
	issuedAt  time.Time
	expiresAt time.Time
	active    bool
	redeemed  map[int64]struct{}
}

func (s *session) snapshotLocked() model.CheckinSession {
	return model.CheckinSession{
		ID:            s.id,
		ClassID:       s.classID,
		IssuedAt:      s.issuedAt,
		ExpiresAt:     s.expiresAt,
		Active:        s.active,
		RedeemedCount: len(s.redeemed),
	}
}

// Registry owns every live check-in session in this process. Sessions are
// addressable by id and grouped by class; a class may accumulate several
// overlapping sessions and retrieval picks the newest usable one.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session
	byClass  map[string][]*session
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*session),
		byClass:  make(map[string][]*session),
		now:      time.Now,
	}
}

// Issue opens a new redemption window for the class. Concurrent issuances
// for the same class are independent sessions.
func (r *Registry) Issue(classID string, duration time.Duration) (model.CheckinSession, error) {
	if strings.TrimSpace(classID) == "" {
		return model.CheckinSession{}, ErrValidation
	}
	if duration <= 0 {
		return model.CheckinSession{}, ErrValidation
	}

	now := r.now().UTC()
	s := &session{
		id:        uuid.NewString(),
		classID:   classID,
		issuedAt:  now,
		expiresAt: now.Add(duration),
		active:    true,
		redeemed:  make(map[int64]struct{}),
	}

	r.mu.Lock()
	r.sessions[s.id] = s
	r.byClass[classID] = append(r.byClass[classID], s)
	r.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), nil
}

// FindUsable returns the latest-issued session for the class that is still
// active and unexpired, or false when no such session exists.
func (r *Registry) FindUsable(classID string) (model.CheckinSession, bool) {
	now := r.now()

	r.mu.RLock()
	candidates := make([]*session, len(r.byClass[classID]))
	copy(candidates, r.byClass[classID])
	r.mu.RUnlock()

	var best *session
	var bestSnap model.CheckinSession
	for _, s := range candidates {
		s.mu.Lock()
		usable := s.active && now.Before(s.expiresAt)
		snap := s.snapshotLocked()
		s.mu.Unlock()

		if !usable {
			continue
		}
		if best == nil || snap.IssuedAt.After(bestSnap.IssuedAt) {
			best = s
			bestSnap = snap
		}
	}

	if best == nil {
		return model.CheckinSession{}, false
	}
	return bestSnap, true
}

// Redeem atomically records one member against one session. The existence,
// liveness and replay checks all read the state as it is at the instant the
// session lock is held, so two racing attempts by the same member resolve
// to exactly one acceptance.
func (r *Registry) Redeem(sessionID string, memberID int64) (RedeemResult, error) {
	if strings.TrimSpace(sessionID) == "" || memberID <= 0 {
		return RedeemResult{}, ErrValidation
	}

	r.mu.RLock()
	s, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return RedeemResult{}, ErrSessionNotFound
	}

	now := r.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active || !now.Before(s.expiresAt) {
		return RedeemResult{}, ErrSessionExpired
	}
	if _, dup := s.redeemed[memberID]; dup {
		return RedeemResult{}, ErrAlreadyRedeemed
	}
	s.redeemed[memberID] = struct{}{}

	return RedeemResult{
		SessionID:  s.id,
		ClassID:    s.classID,
		IssuedAt:   s.issuedAt,
		ExpiresAt:  s.expiresAt,
		RedeemedAt: now.UTC(),
	}, nil
}

// Deactivate revokes a session ahead of its expiry. Deactivation is final.
func (r *Registry) Deactivate(sessionID string) error {
	r.mu.RLock()
	s, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
	return nil
}

// Sweep drops sessions whose expiry passed longer than the retention window
// ago and reports how many were removed. Live sessions are never touched.
func (r *Registry) Sweep(retention time.Duration) int {
	if retention < 0 {
		retention = 0
	}
	cutoff := r.now().Add(-retention)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		s.mu.Lock()
		dead := s.expiresAt.Before(cutoff)
		s.mu.Unlock()
		if !dead {
			continue
		}

		delete(r.sessions, id)
		kept := r.byClass[s.classID][:0]
		for _, cs := range r.byClass[s.classID] {
			if cs != s {
				kept = append(kept, cs)
			}
		}
		if len(kept) == 0 {
			delete(r.byClass, s.classID)
		} else {
			r.byClass[s.classID] = kept
		}
		removed++
	}

	return removed
}
