package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vietanh2810/eventpass-api/internal/domain"
)

var (
	ErrRoundNotFound = domain.NotFound("scoring round not found")
)

type ScoringRound struct {
	ID        uint   `gorm:"primaryKey"`
	EventID   uint   `gorm:"not null;index"`
	Name      string `gorm:"not null"`
	Position  int    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Score struct {
	TeamID         uint            `gorm:"primaryKey;autoIncrement:false"`
	ScoringRoundID uint            `gorm:"primaryKey;autoIncrement:false"`
	Value          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	UpdatedBy      uint            `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

type ScoreDAO struct {
	db *gorm.DB
}

func NewScoreDAO(db *gorm.DB) *ScoreDAO {
	return &ScoreDAO{
		db: db,
	}
}

func (d *ScoreDAO) InsertRound(ctx context.Context, round ScoringRound) (ScoringRound, error) {
	result := d.db.WithContext(ctx).Create(&round)
	if result.Error != nil {
		return ScoringRound{}, result.Error
	}

	return round, nil
}

func (d *ScoreDAO) FindRoundByID(ctx context.Context, id uint) (ScoringRound, error) {
	var round ScoringRound

	result := d.db.WithContext(ctx).First(&round, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ScoringRound{}, ErrRoundNotFound
		}

		return ScoringRound{}, result.Error
	}

	return round, nil
}

func (d *ScoreDAO) FindRoundsByEventID(ctx context.Context, eventID uint) ([]ScoringRound, error) {
	var rounds []ScoringRound

	result := d.db.WithContext(ctx).Where("event_id = ?", eventID).Order("position ASC, id ASC").Find(&rounds)
	if result.Error != nil {
		return nil, result.Error
	}

	return rounds, nil
}

// Upsert writes the (team, round) score; the last writer wins.
func (d *ScoreDAO) Upsert(ctx context.Context, score Score) (Score, error) {
	result := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "team_id"}, {Name: "scoring_round_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
	}).Create(&score)
	if result.Error != nil {
		return Score{}, result.Error
	}

	return score, nil
}

func (d *ScoreDAO) FindByEventID(ctx context.Context, eventID uint) ([]Score, error) {
	var scores []Score

	result := d.db.WithContext(ctx).
		Select("scores.*").
		Joins("JOIN teams ON teams.id = scores.team_id").
		Where("teams.event_id = ?", eventID).
		Find(&scores)
	if result.Error != nil {
		return nil, result.Error
	}

	return scores, nil
}
