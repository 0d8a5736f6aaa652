package repository

import (
	"context"
	"fmt"

	"github.com/vietanh2810/eventpass-api/internal/domain"
	"github.com/vietanh2810/eventpass-api/internal/repository/dao"
)

type ScanDAO interface {
	Insert(ctx context.Context, attempt dao.ScanAttempt) (dao.ScanAttempt, error)
	FindForExport(ctx context.Context, eventID uint, outcome string) ([]dao.ScanExportRow, error)
}

type ScanRepository struct {
	dao ScanDAO
}

func NewScanRepository(dao ScanDAO) *ScanRepository {
	return &ScanRepository{
		dao: dao,
	}
}

func (r *ScanRepository) Append(ctx context.Context, attempt domain.ScanAttempt) (domain.ScanAttempt, error) {
	created, err := r.dao.Insert(ctx, dao.ScanAttempt{
		ID:             attempt.ID,
		EventID:        attempt.EventID,
		VolunteerID:    attempt.VolunteerID,
		RegistrationID: attempt.RegistrationID,
		Code:           attempt.Code,
		Checkpoint:     attempt.Checkpoint,
		Outcome:        string(attempt.Outcome),
		Detail:         attempt.Detail,
		ScannedAt:      attempt.Timestamp,
	})
	if err != nil {
		return domain.ScanAttempt{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *ScanRepository) ExportRows(ctx context.Context, eventID uint, outcome domain.ScanOutcome) ([]domain.ScanExportRow, error) {
	found, err := r.dao.FindForExport(ctx, eventID, string(outcome))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindForExport -> %w", err)
	}

	rows := make([]domain.ScanExportRow, len(found))
	for i, row := range found {
		rows[i] = domain.ScanExportRow{
			ScanAttempt: domain.ScanAttempt{
				ID:             row.ID,
				EventID:        row.EventID,
				VolunteerID:    row.VolunteerID,
				RegistrationID: row.RegistrationID,
				Checkpoint:     row.Checkpoint,
				Outcome:        domain.ScanOutcome(row.Outcome),
				Detail:         row.Detail,
				Timestamp:      row.ScannedAt,
			},
			ParticipantName:  row.ParticipantName,
			ParticipantEmail: row.ParticipantEmail,
			VolunteerName:    row.VolunteerName,
		}
	}

	return rows, nil
}

func (r *ScanRepository) daoToDomain(s dao.ScanAttempt) domain.ScanAttempt {
	return domain.ScanAttempt{
		ID:             s.ID,
		EventID:        s.EventID,
		VolunteerID:    s.VolunteerID,
		RegistrationID: s.RegistrationID,
		Code:           s.Code,
		Checkpoint:     s.Checkpoint,
		Outcome:        domain.ScanOutcome(s.Outcome),
		Detail:         s.Detail,
		Timestamp:      s.ScannedAt,
	}
}
