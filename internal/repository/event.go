package repository

import (
	"context"
	"fmt"

	"github.com/vietanh2810/eventpass-api/internal/domain"
	"github.com/vietanh2810/eventpass-api/internal/repository/dao"
)

var (
	ErrEventNotFound      = dao.ErrEventNotFound
	ErrCheckpointNotFound = dao.ErrCheckpointNotFound
	ErrCheckpointExists   = dao.ErrCheckpointExists
	ErrCheckpointLimit    = dao.ErrCheckpointLimit
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event, checkpoints []dao.Checkpoint) (dao.Event, error)
	FindByID(ctx context.Context, id uint) (dao.Event, error)
	AppendCheckpoint(ctx context.Context, eventID uint, name string) (dao.Checkpoint, error)
	SetCheckpointUnlocked(ctx context.Context, eventID uint, name string, unlocked bool) error
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	checkpoints := make([]dao.Checkpoint, len(event.Checkpoints))
	for i, cp := range event.Checkpoints {
		checkpoints[i] = dao.Checkpoint{Name: cp.Name, Unlocked: cp.Unlocked}
	}

	created, err := r.dao.Insert(ctx, dao.Event{
		Name:             event.Name,
		Description:      event.Description,
		RegistrationOpen: event.RegistrationOpen,
		EnforceOrder:     event.EnforceOrder,
		OrganizerID:      event.OrganizerID,
	}, checkpoints)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *EventRepository) AppendCheckpoint(ctx context.Context, eventID uint, name string) (domain.Checkpoint, error) {
	created, err := r.dao.AppendCheckpoint(ctx, eventID, name)
	if err != nil {
		return domain.Checkpoint{}, fmt.Errorf("r.dao.AppendCheckpoint -> %w", err)
	}

	return r.checkpointDaoToDomain(created), nil
}

func (r *EventRepository) SetCheckpointUnlocked(ctx context.Context, eventID uint, name string, unlocked bool) error {
	if err := r.dao.SetCheckpointUnlocked(ctx, eventID, name, unlocked); err != nil {
		return fmt.Errorf("r.dao.SetCheckpointUnlocked -> %w", err)
	}

	return nil
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	return domain.Event{
		ID:               e.ID,
		Name:             e.Name,
		Description:      e.Description,
		RegistrationOpen: e.RegistrationOpen,
		EnforceOrder:     e.EnforceOrder,
		OrganizerID:      e.OrganizerID,
		Checkpoints:      r.checkpointsDaoToDomain(e.Checkpoints),
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func (r *EventRepository) checkpointsDaoToDomain(checkpoints []dao.Checkpoint) []domain.Checkpoint {
	domainCheckpoints := make([]domain.Checkpoint, len(checkpoints))
	for i, cp := range checkpoints {
		domainCheckpoints[i] = r.checkpointDaoToDomain(cp)
	}
	return domainCheckpoints
}

func (r *EventRepository) checkpointDaoToDomain(cp dao.Checkpoint) domain.Checkpoint {
	return domain.Checkpoint{
		Name:     cp.Name,
		Position: cp.Position,
		Unlocked: cp.Unlocked,
	}
}
