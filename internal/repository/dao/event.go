package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vietanh2810/eventpass-api/internal/domain"
)

var (
	ErrEventNotFound      = domain.NotFound("event not found")
	ErrCheckpointNotFound = domain.PolicyViolation("unknown checkpoint")
	ErrCheckpointExists   = domain.Conflict("checkpoint already exists")
	ErrCheckpointLimit    = domain.PolicyViolation(fmt.Sprintf("an event has at most %d checkpoints", domain.MaxCheckpoints))
)

type Event struct {
	ID               uint   `gorm:"primaryKey"`
	Name             string `gorm:"not null"`
	Description      string
	RegistrationOpen bool         `gorm:"not null"`
	EnforceOrder     bool         `gorm:"not null"`
	OrganizerID      uint         `gorm:"not null;index"`
	Checkpoints      []Checkpoint `gorm:"foreignKey:EventID"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Checkpoint struct {
	ID        uint   `gorm:"primaryKey"`
	EventID   uint   `gorm:"not null;uniqueIndex:idx_checkpoints_event_name"`
	Name      string `gorm:"not null;uniqueIndex:idx_checkpoints_event_name"`
	Position  int    `gorm:"not null"`
	Unlocked  bool   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Checkpoint) TableName() string {
	return "event_checkpoints"
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func orderedCheckpoints(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (d *EventDAO) Insert(ctx context.Context, event Event, checkpoints []Checkpoint) (Event, error) {
	if len(checkpoints) > domain.MaxCheckpoints {
		return Event{}, ErrCheckpointLimit
	}

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&event).Error; err != nil {
			return err
		}

		for i := range checkpoints {
			checkpoints[i].EventID = event.ID
			checkpoints[i].Position = i
		}
		if len(checkpoints) > 0 {
			if err := tx.Create(&checkpoints).Error; err != nil {
				if isUniqueViolation(err, "idx_checkpoints_event_name") {
					return ErrCheckpointExists
				}
				return err
			}
		}

		event.Checkpoints = checkpoints
		return nil
	})
	if err != nil {
		return Event{}, err
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).Preload("Checkpoints", orderedCheckpoints).First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

// AppendCheckpoint adds name at the end of the event's sequence. The event row is
// locked so concurrent appends get distinct positions.
func (d *EventDAO) AppendCheckpoint(ctx context.Context, eventID uint, name string) (Checkpoint, error) {
	var created Checkpoint

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&event, eventID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		var next int
		err = tx.Model(&Checkpoint{}).
			Where("event_id = ?", eventID).
			Select("COALESCE(MAX(position) + 1, 0)").
			Scan(&next).Error
		if err != nil {
			return err
		}
		if next >= domain.MaxCheckpoints {
			return ErrCheckpointLimit
		}

		created = Checkpoint{EventID: eventID, Name: name, Position: next}
		if err := tx.Create(&created).Error; err != nil {
			if isUniqueViolation(err, "idx_checkpoints_event_name") {
				return ErrCheckpointExists
			}
			return err
		}

		return nil
	})
	if err != nil {
		return Checkpoint{}, err
	}

	return created, nil
}

// SetCheckpointUnlocked is a single-row last-writer-wins update.
func (d *EventDAO) SetCheckpointUnlocked(ctx context.Context, eventID uint, name string, unlocked bool) error {
	var checkpoint Checkpoint

	result := d.db.WithContext(ctx).Where("event_id = ? AND name = ?", eventID, name).First(&checkpoint)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			if _, err := d.FindByID(ctx, eventID); err != nil {
				return err
			}
			return ErrCheckpointNotFound
		}

		return result.Error
	}

	return d.db.WithContext(ctx).Model(&checkpoint).Update("unlocked", unlocked).Error
}
