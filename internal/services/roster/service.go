package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/classpass/backend/internal/domain/model"
)

var ErrClassNotFound = errors.New("class not found")

type Store interface {
	ClassExists(ctx context.Context, classID string) (bool, error)
	IsEnrolled(ctx context.Context, classID string, memberID int64) (bool, error)
	ScheduleFor(ctx context.Context, classID string) ([]model.ScheduleSlot, error)
	ListEnrolled(ctx context.Context, classID string) ([]int64, error)
}

// Service fronts the class roster for the check-in pipeline. It is a thin
// read-only layer; enrollment management belongs to an administrative
// surface outside this service.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) ClassExists(ctx context.Context, classID string) (bool, error) {
	if strings.TrimSpace(classID) == "" {
		return false, nil
	}
	exists, err := s.store.ClassExists(ctx, classID)
	if err != nil {
		return false, fmt.Errorf("class exists lookup: %w", err)
	}
	return exists, nil
}

func (s *Service) IsEnrolled(ctx context.Context, classID string, memberID int64) (bool, error) {
	if strings.TrimSpace(classID) == "" || memberID <= 0 {
		return false, nil
	}
	enrolled, err := s.store.IsEnrolled(ctx, classID, memberID)
	if err != nil {
		return false, fmt.Errorf("enrollment lookup: %w", err)
	}
	return enrolled, nil
}

func (s *Service) ScheduleFor(ctx context.Context, classID string) ([]model.ScheduleSlot, error) {
	if strings.TrimSpace(classID) == "" {
		return nil, ErrClassNotFound
	}
	slots, err := s.store.ScheduleFor(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("schedule lookup: %w", err)
	}
	return slots, nil
}

// Roll returns every member enrolled in the class, for instructor views
// that want absentees alongside the ledger's accepted entries.
func (s *Service) Roll(ctx context.Context, classID string) ([]int64, error) {
	if strings.TrimSpace(classID) == "" {
		return nil, ErrClassNotFound
	}

	exists, err := s.store.ClassExists(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("class exists lookup: %w", err)
	}
	if !exists {
		return nil, ErrClassNotFound
	}

	members, err := s.store.ListEnrolled(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("list enrolled members: %w", err)
	}
	return members, nil
}
