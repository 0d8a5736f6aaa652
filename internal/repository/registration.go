package repository

import (
	"context"
	"fmt"

	"github.com/vietanh2810/eventpass-api/internal/domain"
	"github.com/vietanh2810/eventpass-api/internal/repository/dao"
)

var (
	ErrRegistrationNotFound = dao.ErrRegistrationNotFound
	ErrRegistrationExists   = dao.ErrRegistrationExists
	ErrStatusChanged        = dao.ErrStatusChanged
	ErrCheckInExists        = dao.ErrCheckInExists
)

type RegistrationDAO interface {
	Insert(ctx context.Context, registration dao.Registration) (dao.Registration, error)
	FindByID(ctx context.Context, id uint) (dao.Registration, error)
	UpdateStatus(ctx context.Context, id uint, from []string, to string) (dao.Registration, error)
	SetQRCode(ctx context.Context, id uint, code string) (dao.Registration, error)
	Delete(ctx context.Context, id uint) error
	InsertCheckIn(ctx context.Context, checkIn dao.CheckpointCheckIn) (bool, error)
}

type RegistrationRepository struct {
	dao RegistrationDAO
}

func NewRegistrationRepository(dao RegistrationDAO) *RegistrationRepository {
	return &RegistrationRepository{
		dao: dao,
	}
}

func (r *RegistrationRepository) Create(ctx context.Context, registration domain.Registration) (domain.Registration, error) {
	created, err := r.dao.Insert(ctx, dao.Registration{
		EventID: registration.EventID,
		UserID:  registration.UserID,
		Status:  string(registration.Status),
	})
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *RegistrationRepository) FindByID(ctx context.Context, id uint) (domain.Registration, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id uint, from []domain.RegistrationStatus, to domain.RegistrationStatus) (domain.Registration, error) {
	fromStatuses := make([]string, len(from))
	for i, s := range from {
		fromStatuses[i] = string(s)
	}

	updated, err := r.dao.UpdateStatus(ctx, id, fromStatuses, string(to))
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *RegistrationRepository) SetQRCode(ctx context.Context, id uint, code string) (domain.Registration, error) {
	updated, err := r.dao.SetQRCode(ctx, id, code)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.SetQRCode -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *RegistrationRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *RegistrationRepository) AppendCheckIn(ctx context.Context, registrationID uint, checkIn domain.CheckpointCheckIn) (bool, error) {
	first, err := r.dao.InsertCheckIn(ctx, dao.CheckpointCheckIn{
		RegistrationID: registrationID,
		Checkpoint:     checkIn.Checkpoint,
		RecordedBy:     checkIn.RecordedBy,
		CheckedInAt:    checkIn.Timestamp,
	})
	if err != nil {
		return false, fmt.Errorf("r.dao.InsertCheckIn -> %w", err)
	}

	return first, nil
}

func (r *RegistrationRepository) daoToDomain(reg dao.Registration) domain.Registration {
	return domain.Registration{
		ID:                 reg.ID,
		EventID:            reg.EventID,
		UserID:             reg.UserID,
		Status:             domain.RegistrationStatus(reg.Status),
		QRCode:             reg.QRCode,
		CheckpointCheckIns: r.checkInsDaoToDomain(reg.CheckIns),
		CreatedAt:          reg.CreatedAt,
		UpdatedAt:          reg.UpdatedAt,
	}
}

func (r *RegistrationRepository) checkInsDaoToDomain(checkIns []dao.CheckpointCheckIn) []domain.CheckpointCheckIn {
	domainCheckIns := make([]domain.CheckpointCheckIn, len(checkIns))
	for i, c := range checkIns {
		domainCheckIns[i] = domain.CheckpointCheckIn{
			Checkpoint: c.Checkpoint,
			Timestamp:  c.CheckedInAt,
			RecordedBy: c.RecordedBy,
		}
	}
	return domainCheckIns
}
