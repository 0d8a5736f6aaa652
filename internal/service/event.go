package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vietanh2810/eventpass-api/internal/domain"
)

var (
	ErrInvalidEventName    = domain.Invalid("event name is required")
	ErrDuplicateCheckpoint = domain.Invalid("checkpoint names must be unique")
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id uint) (domain.Event, error)
}

type EventService struct {
	repo EventRepository
}

func NewEventService(repo EventRepository) *EventService {
	return &EventService{
		repo: repo,
	}
}

// CreateEvent stores the event with its initial checkpoint sequence, all locked.
func (s *EventService) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	event.Name = strings.TrimSpace(event.Name)
	if event.Name == "" {
		return domain.Event{}, ErrInvalidEventName
	}

	if len(event.Checkpoints) > domain.MaxCheckpoints {
		return domain.Event{}, ErrCheckpointLimit
	}

	seen := make(map[string]struct{}, len(event.Checkpoints))
	for i, cp := range event.Checkpoints {
		name := strings.TrimSpace(cp.Name)
		if name == "" {
			return domain.Event{}, ErrInvalidCheckpointName
		}
		if _, ok := seen[name]; ok {
			return domain.Event{}, ErrDuplicateCheckpoint
		}
		seen[name] = struct{}{}
		event.Checkpoints[i] = domain.Checkpoint{Name: name, Position: i}
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uint) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return domain.Event{}, ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return event, nil
}
