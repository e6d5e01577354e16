package checkin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classpass/backend/internal/domain/enums"
	"github.com/classpass/backend/internal/domain/model"
	"github.com/classpass/backend/internal/domain/rules"
	"github.com/classpass/backend/internal/pkg/validate"
)

type Roster interface {
	ClassExists(ctx context.Context, classID string) (bool, error)
	IsEnrolled(ctx context.Context, classID string, memberID int64) (bool, error)
	ScheduleFor(ctx context.Context, classID string) ([]model.ScheduleSlot, error)
}

type Ledger interface {
	Append(ctx context.Context, entry model.AttendanceEntry) error
	ExistsFor(ctx context.Context, classID string, memberID int64, dayKey string) (bool, error)
	ListForClassDay(ctx context.Context, classID, dayKey string) ([]model.AttendanceEntry, error)
}

// ErrDuplicateEntry is what a Ledger implementation returns from Append when
// the (class, member, day) key already holds an entry. The service maps it
// to ErrAlreadyMarkedToday so the unique constraint stays the last word on
// daily uniqueness even under concurrent check-ins.
var ErrDuplicateEntry = errors.New("duplicate attendance entry")

type NoticeSink interface {
	Enqueue(notice Notice)
}

type Config struct {
	DefaultDuration time.Duration
	MaxDuration     time.Duration
	GracePeriod     time.Duration
	Timezone        string
}

type Dependencies struct {
	Registry *Registry
	Roster   Roster
	Ledger   Ledger
	Notifier NoticeSink
	Logger   *zap.Logger
}

type Service struct {
	registry *Registry
	roster   Roster
	ledger   Ledger
	notifier NoticeSink
	cfg      Config
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = 30 * time.Minute
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = 4 * time.Hour
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = rules.GracePeriod
	}

	loc := time.UTC
	if strings.TrimSpace(cfg.Timezone) != "" {
		if parsed, err := time.LoadLocation(cfg.Timezone); err == nil {
			loc = parsed
		}
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := deps.Registry
	if registry == nil {
		registry = NewRegistry()
	}

	return &Service{
		registry: registry,
		roster:   deps.Roster,
		ledger:   deps.Ledger,
		notifier: deps.Notifier,
		cfg:      cfg,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

// Issue opens a session for the class and returns the encoded bearer token.
// Unknown classes are rejected before any session is created.
func (s *Service) Issue(ctx context.Context, classID string, duration time.Duration) (IssueResult, error) {
	if !validate.ClassID(classID) {
		return IssueResult{}, ErrValidation
	}
	if duration <= 0 {
		duration = s.cfg.DefaultDuration
	}
	if duration > s.cfg.MaxDuration {
		duration = s.cfg.MaxDuration
	}

	if s.roster != nil {
		exists, err := s.roster.ClassExists(ctx, classID)
		if err != nil {
			return IssueResult{}, fmt.Errorf("check class exists: %w", err)
		}
		if !exists {
			return IssueResult{}, ErrClassNotFound
		}
	}

	session, err := s.registry.Issue(classID, duration)
	if err != nil {
		return IssueResult{}, err
	}

	token, err := EncodeToken(TokenPayload{
		ClassID:   session.ClassID,
		SessionID: session.ID,
		IssuedAt:  session.IssuedAt.Unix(),
		ExpiresAt: session.ExpiresAt.Unix(),
	})
	if err != nil {
		return IssueResult{}, fmt.Errorf("encode checkin token: %w", err)
	}

	return IssueResult{
		Token:     token,
		SessionID: session.ID,
		ClassID:   session.ClassID,
		IssuedAt:  session.IssuedAt,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// CheckIn runs the full redemption pipeline for one member presenting one
// token. All read-only rejections resolve before any state changes; the
// registry redemption and the ledger append are the only two mutations and
// both happen only on the accept path.
func (s *Service) CheckIn(ctx context.Context, token string, memberID int64) (model.AttendanceEntry, error) {
	if memberID <= 0 {
		return model.AttendanceEntry{}, ErrValidation
	}

	payload, err := DecodeToken(token)
	if err != nil {
		return model.AttendanceEntry{}, err
	}

	now := s.now()
	if !now.Before(payload.Expiry()) {
		return model.AttendanceEntry{}, ErrTokenExpired
	}

	exists, err := s.roster.ClassExists(ctx, payload.ClassID)
	if err != nil {
		return model.AttendanceEntry{}, fmt.Errorf("check class exists: %w", err)
	}
	if !exists {
		return model.AttendanceEntry{}, ErrClassNotFound
	}

	enrolled, err := s.roster.IsEnrolled(ctx, payload.ClassID, memberID)
	if err != nil {
		return model.AttendanceEntry{}, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return model.AttendanceEntry{}, ErrNotEnrolled
	}

	dayKey := rules.DayKey(now, s.loc)
	marked, err := s.ledger.ExistsFor(ctx, payload.ClassID, memberID, dayKey)
	if err != nil {
		return model.AttendanceEntry{}, fmt.Errorf("check daily attendance: %w", err)
	}
	if marked {
		return model.AttendanceEntry{}, ErrAlreadyMarkedToday
	}

	if err := ctx.Err(); err != nil {
		return model.AttendanceEntry{}, fmt.Errorf("checkin aborted before redemption: %w", err)
	}

	// Registry rejections pass through verbatim from here on.
	result, err := s.registry.Redeem(payload.SessionID, memberID)
	if err != nil {
		return model.AttendanceEntry{}, err
	}

	status := s.classify(ctx, payload.ClassID, result.RedeemedAt)

	entry := model.AttendanceEntry{
		ID:         uuid.NewString(),
		ClassID:    payload.ClassID,
		MemberID:   memberID,
		DayKey:     dayKey,
		RedeemedAt: result.RedeemedAt,
		Status:     status,
		SessionID:  result.SessionID,
	}

	if err := s.ledger.Append(ctx, entry); err != nil {
		if errors.Is(err, ErrDuplicateEntry) {
			return model.AttendanceEntry{}, ErrAlreadyMarkedToday
		}
		return model.AttendanceEntry{}, fmt.Errorf("append attendance entry: %w", err)
	}

	if s.notifier != nil {
		s.notifier.Enqueue(Notice{
			ClassID:    entry.ClassID,
			MemberID:   entry.MemberID,
			Status:     entry.Status,
			RedeemedAt: entry.RedeemedAt,
		})
	}

	return entry, nil
}

// Deactivate revokes the session so FindUsable and Redeem stop accepting it
// immediately, ahead of its natural expiry.
func (s *Service) Deactivate(_ context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrValidation
	}
	return s.registry.Deactivate(sessionID)
}

// ActiveSession reports the newest usable session for a class, if any.
func (s *Service) ActiveSession(_ context.Context, classID string) (model.CheckinSession, bool, error) {
	if strings.TrimSpace(classID) == "" {
		return model.CheckinSession{}, false, ErrValidation
	}
	session, ok := s.registry.FindUsable(classID)
	return session, ok, nil
}

// AttendanceForDay lists the accepted entries for a class on one calendar day.
func (s *Service) AttendanceForDay(ctx context.Context, classID, dayKey string) ([]model.AttendanceEntry, error) {
	if strings.TrimSpace(classID) == "" {
		return nil, ErrValidation
	}
	if strings.TrimSpace(dayKey) == "" {
		dayKey = rules.DayKey(s.now(), s.loc)
	}

	entries, err := s.ledger.ListForClassDay(ctx, classID, dayKey)
	if err != nil {
		return nil, fmt.Errorf("list attendance for day: %w", err)
	}
	return entries, nil
}

// classify resolves on-time vs late from the class schedule. A class with no
// slot on this weekday defaults to on-time; a schedule lookup fault does the
// same rather than failing an otherwise-accepted redemption.
func (s *Service) classify(ctx context.Context, classID string, redeemedAt time.Time) enums.AttendanceStatus {
	slots, err := s.roster.ScheduleFor(ctx, classID)
	if err != nil {
		s.logger.Warn("schedule lookup failed, defaulting to on-time",
			zap.String("class_id", classID),
			zap.Error(err),
		)
		return enums.AttendanceStatusOnTime
	}

	slot, ok := rules.SlotForDay(slots, redeemedAt, s.loc)
	if !ok {
		return enums.AttendanceStatusOnTime
	}

	start := rules.ScheduledStart(slot, redeemedAt, s.loc)
	return rules.ClassifyArrival(redeemedAt, start, s.cfg.GracePeriod)
}
