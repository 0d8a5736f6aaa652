package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/vietanh2810/eventpass-api/internal/domain"
)

var (
	ErrRegistrationNotFound = domain.NotFound("registration not found")
	ErrRegistrationExists   = domain.Conflict("registration already exists")
	ErrStatusChanged        = domain.Conflict("registration status changed concurrently")
	ErrCheckInExists        = domain.Conflict("checkpoint already recorded")
)

type Registration struct {
	ID        uint                `gorm:"primaryKey"`
	EventID   uint                `gorm:"not null;uniqueIndex:idx_registrations_event_user"`
	UserID    uint                `gorm:"not null;uniqueIndex:idx_registrations_event_user"`
	Status    string              `gorm:"not null;index"`
	QRCode    string              `gorm:"type:text"`
	CheckIns  []CheckpointCheckIn `gorm:"foreignKey:RegistrationID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CheckpointCheckIn is unique per (registration, checkpoint). The index is what
// makes concurrent scans of the same person at the same station resolve to a
// single success.
type CheckpointCheckIn struct {
	ID             uint      `gorm:"primaryKey"`
	RegistrationID uint      `gorm:"not null;uniqueIndex:idx_check_ins_registration_checkpoint"`
	Checkpoint     string    `gorm:"not null;uniqueIndex:idx_check_ins_registration_checkpoint"`
	RecordedBy     uint      `gorm:"not null"`
	CheckedInAt    time.Time `gorm:"not null"`
}

type RegistrationDAO struct {
	db *gorm.DB
}

func NewRegistrationDAO(db *gorm.DB) *RegistrationDAO {
	return &RegistrationDAO{
		db: db,
	}
}

func orderedCheckIns(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func (d *RegistrationDAO) Insert(ctx context.Context, registration Registration) (Registration, error) {
	result := d.db.WithContext(ctx).Omit("CheckIns").Create(&registration)
	if result.Error != nil {
		if isUniqueViolation(result.Error, "idx_registrations_event_user") {
			return Registration{}, ErrRegistrationExists
		}

		return Registration{}, result.Error
	}

	return registration, nil
}

func (d *RegistrationDAO) FindByID(ctx context.Context, id uint) (Registration, error) {
	var registration Registration

	result := d.db.WithContext(ctx).Preload("CheckIns", orderedCheckIns).First(&registration, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrRegistrationNotFound
		}

		return Registration{}, result.Error
	}

	return registration, nil
}

// UpdateStatus moves the registration to status `to` only if its current status is
// one of `from`.
func (d *RegistrationDAO) UpdateStatus(ctx context.Context, id uint, from []string, to string) (Registration, error) {
	result := d.db.WithContext(ctx).
		Model(&Registration{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return Registration{}, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := d.FindByID(ctx, id); err != nil {
			return Registration{}, err
		}
		return Registration{}, ErrStatusChanged
	}

	return d.FindByID(ctx, id)
}

// SetQRCode stores code unless a code was stored already; the stored code is returned.
func (d *RegistrationDAO) SetQRCode(ctx context.Context, id uint, code string) (Registration, error) {
	result := d.db.WithContext(ctx).
		Model(&Registration{}).
		Where("id = ? AND (qr_code IS NULL OR qr_code = '')", id).
		Update("qr_code", code)
	if result.Error != nil {
		return Registration{}, result.Error
	}

	return d.FindByID(ctx, id)
}

func (d *RegistrationDAO) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("registration_id = ?", id).Delete(&CheckpointCheckIn{}).Error; err != nil {
			return err
		}
		if err := tx.Where("registration_id = ?", id).Delete(&TeamMember{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&Registration{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRegistrationNotFound
		}

		return nil
	})
}

// InsertCheckIn records the check-in and, for an approved registration, moves it to
// checked-in in the same transaction. first reports whether that transition happened.
func (d *RegistrationDAO) InsertCheckIn(ctx context.Context, checkIn CheckpointCheckIn) (first bool, err error) {
	err = d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&checkIn).Error; err != nil {
			if isUniqueViolation(err, "idx_check_ins_registration_checkpoint") {
				return ErrCheckInExists
			}
			return err
		}

		result := tx.Model(&Registration{}).
			Where("id = ? AND status = ?", checkIn.RegistrationID, string(domain.RegistrationApproved)).
			Update("status", string(domain.RegistrationCheckedIn))
		if result.Error != nil {
			return result.Error
		}
		first = result.RowsAffected == 1

		return nil
	})

	return first, err
}
