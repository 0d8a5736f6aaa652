package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/vietanh2810/eventpass-api/internal/domain"
)

var (
	ErrTeamNotFound       = domain.NotFound("team not found")
	ErrTeamNameExists     = domain.Conflict("team name already taken for this event")
	ErrAlreadyOnTeam      = domain.Conflict("registration already belongs to a team")
	ErrMembershipNotFound = domain.NotFound("team membership not found")
)

type Team struct {
	ID        uint         `gorm:"primaryKey"`
	EventID   uint         `gorm:"not null;uniqueIndex:idx_teams_event_name"`
	Name      string       `gorm:"not null;uniqueIndex:idx_teams_event_name"`
	Members   []TeamMember `gorm:"foreignKey:TeamID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TeamMember carries the event id so one registration can join at most one team
// per event.
type TeamMember struct {
	ID             uint      `gorm:"primaryKey"`
	EventID        uint      `gorm:"not null;uniqueIndex:idx_team_members_event_registration"`
	RegistrationID uint      `gorm:"not null;uniqueIndex:idx_team_members_event_registration"`
	TeamID         uint      `gorm:"not null;index"`
	AddedBy        uint      `gorm:"not null"`
	JoinedAt       time.Time `gorm:"not null"`
}

type TeamDAO struct {
	db *gorm.DB
}

func NewTeamDAO(db *gorm.DB) *TeamDAO {
	return &TeamDAO{
		db: db,
	}
}

func membersInScanOrder(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func (d *TeamDAO) Insert(ctx context.Context, team Team) (Team, error) {
	result := d.db.WithContext(ctx).Omit("Members").Create(&team)
	if result.Error != nil {
		if isUniqueViolation(result.Error, "idx_teams_event_name") {
			return Team{}, ErrTeamNameExists
		}

		return Team{}, result.Error
	}

	return team, nil
}

func (d *TeamDAO) FindByID(ctx context.Context, id uint) (Team, error) {
	var team Team

	result := d.db.WithContext(ctx).Preload("Members", membersInScanOrder).First(&team, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Team{}, ErrTeamNotFound
		}

		return Team{}, result.Error
	}

	return team, nil
}

// FindByEventID returns the event's teams oldest first.
func (d *TeamDAO) FindByEventID(ctx context.Context, eventID uint) ([]Team, error) {
	var teams []Team

	result := d.db.WithContext(ctx).
		Preload("Members", membersInScanOrder).
		Where("event_id = ?", eventID).
		Order("created_at ASC, id ASC").
		Find(&teams)
	if result.Error != nil {
		return nil, result.Error
	}

	return teams, nil
}

func (d *TeamDAO) InsertMember(ctx context.Context, member TeamMember) (TeamMember, error) {
	result := d.db.WithContext(ctx).Create(&member)
	if result.Error != nil {
		if isUniqueViolation(result.Error, "idx_team_members_event_registration") {
			return TeamMember{}, ErrAlreadyOnTeam
		}

		return TeamMember{}, result.Error
	}

	return member, nil
}

func (d *TeamDAO) FindMembership(ctx context.Context, eventID, registrationID uint) (TeamMember, error) {
	var member TeamMember

	result := d.db.WithContext(ctx).
		Where("event_id = ? AND registration_id = ?", eventID, registrationID).
		First(&member)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return TeamMember{}, ErrMembershipNotFound
		}

		return TeamMember{}, result.Error
	}

	return member, nil
}
