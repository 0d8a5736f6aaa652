package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// ScanAttempt rows are never updated or deleted.
type ScanAttempt struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)"`
	EventID        uint      `gorm:"not null;index"`
	VolunteerID    uint      `gorm:"not null"`
	RegistrationID *uint     `gorm:"index"`
	Code           string    `gorm:"type:text"`
	Checkpoint     string    `gorm:"not null"`
	Outcome        string    `gorm:"not null;index"`
	Detail         string    `gorm:"type:text"`
	ScannedAt      time.Time `gorm:"not null;index"`
}

type ScanExportRow struct {
	ID               string
	EventID          uint
	VolunteerID      uint
	RegistrationID   *uint
	Checkpoint       string
	Outcome          string
	Detail           string
	ScannedAt        time.Time
	ParticipantName  string
	ParticipantEmail string
	VolunteerName    string
}

type ScanDAO struct {
	db *gorm.DB
}

func NewScanDAO(db *gorm.DB) *ScanDAO {
	return &ScanDAO{
		db: db,
	}
}

func (d *ScanDAO) Insert(ctx context.Context, attempt ScanAttempt) (ScanAttempt, error) {
	result := d.db.WithContext(ctx).Create(&attempt)
	if result.Error != nil {
		return ScanAttempt{}, result.Error
	}

	return attempt, nil
}

// FindForExport joins every attempt of the event with the participant and
// volunteer names. outcome filters when not empty.
func (d *ScanDAO) FindForExport(ctx context.Context, eventID uint, outcome string) ([]ScanExportRow, error) {
	var rows []ScanExportRow

	query := d.db.WithContext(ctx).
		Table("scan_attempts AS s").
		Select(`s.id, s.event_id, s.volunteer_id, s.registration_id, s.checkpoint, s.outcome, s.detail, s.scanned_at,
			COALESCE(pu.name, '') AS participant_name,
			COALESCE(pu.email, '') AS participant_email,
			COALESCE(vu.name, '') AS volunteer_name`).
		Joins("LEFT JOIN registrations AS r ON r.id = s.registration_id").
		Joins("LEFT JOIN users AS pu ON pu.id = r.user_id").
		Joins("LEFT JOIN users AS vu ON vu.id = s.volunteer_id").
		Where("s.event_id = ?", eventID)
	if outcome != "" {
		query = query.Where("s.outcome = ?", outcome)
	}

	result := query.Order("s.scanned_at ASC, s.id ASC").Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}
