package repository

import (
	"context"
	"fmt"

	"github.com/vietanh2810/eventpass-api/internal/domain"
	"github.com/vietanh2810/eventpass-api/internal/repository/dao"
)

var (
	ErrRoundNotFound = dao.ErrRoundNotFound
)

type ScoreDAO interface {
	InsertRound(ctx context.Context, round dao.ScoringRound) (dao.ScoringRound, error)
	FindRoundByID(ctx context.Context, id uint) (dao.ScoringRound, error)
	FindRoundsByEventID(ctx context.Context, eventID uint) ([]dao.ScoringRound, error)
	Upsert(ctx context.Context, score dao.Score) (dao.Score, error)
	FindByEventID(ctx context.Context, eventID uint) ([]dao.Score, error)
}

type ScoreRepository struct {
	dao ScoreDAO
}

func NewScoreRepository(dao ScoreDAO) *ScoreRepository {
	return &ScoreRepository{
		dao: dao,
	}
}

func (r *ScoreRepository) CreateRound(ctx context.Context, round domain.ScoringRound) (domain.ScoringRound, error) {
	created, err := r.dao.InsertRound(ctx, dao.ScoringRound{
		EventID:  round.EventID,
		Name:     round.Name,
		Position: round.Position,
	})
	if err != nil {
		return domain.ScoringRound{}, fmt.Errorf("r.dao.InsertRound -> %w", err)
	}

	return r.roundDaoToDomain(created), nil
}

func (r *ScoreRepository) FindRoundByID(ctx context.Context, id uint) (domain.ScoringRound, error) {
	found, err := r.dao.FindRoundByID(ctx, id)
	if err != nil {
		return domain.ScoringRound{}, fmt.Errorf("r.dao.FindRoundByID -> %w", err)
	}

	return r.roundDaoToDomain(found), nil
}

func (r *ScoreRepository) RoundsByEventID(ctx context.Context, eventID uint) ([]domain.ScoringRound, error) {
	found, err := r.dao.FindRoundsByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindRoundsByEventID -> %w", err)
	}

	rounds := make([]domain.ScoringRound, len(found))
	for i, round := range found {
		rounds[i] = r.roundDaoToDomain(round)
	}
	return rounds, nil
}

func (r *ScoreRepository) Upsert(ctx context.Context, score domain.Score) (domain.Score, error) {
	saved, err := r.dao.Upsert(ctx, dao.Score{
		TeamID:         score.TeamID,
		ScoringRoundID: score.ScoringRoundID,
		Value:          score.Value,
		UpdatedBy:      score.UpdatedBy,
		UpdatedAt:      score.UpdatedAt,
	})
	if err != nil {
		return domain.Score{}, fmt.Errorf("r.dao.Upsert -> %w", err)
	}

	return r.scoreDaoToDomain(saved), nil
}

func (r *ScoreRepository) ScoresByEventID(ctx context.Context, eventID uint) ([]domain.Score, error) {
	found, err := r.dao.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEventID -> %w", err)
	}

	scores := make([]domain.Score, len(found))
	for i, s := range found {
		scores[i] = r.scoreDaoToDomain(s)
	}
	return scores, nil
}

func (r *ScoreRepository) roundDaoToDomain(round dao.ScoringRound) domain.ScoringRound {
	return domain.ScoringRound{
		ID:        round.ID,
		EventID:   round.EventID,
		Name:      round.Name,
		Position:  round.Position,
		CreatedAt: round.CreatedAt,
	}
}

func (r *ScoreRepository) scoreDaoToDomain(s dao.Score) domain.Score {
	return domain.Score{
		TeamID:         s.TeamID,
		ScoringRoundID: s.ScoringRoundID,
		Value:          s.Value,
		UpdatedBy:      s.UpdatedBy,
		UpdatedAt:      s.UpdatedAt,
	}
}
