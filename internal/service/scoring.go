package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/vietanh2810/eventpass-api/internal/domain"
)

var ErrInvalidRoundName = domain.Invalid("round name is required")

type ScoreRepository interface {
	CreateRound(ctx context.Context, round domain.ScoringRound) (domain.ScoringRound, error)
	FindRoundByID(ctx context.Context, id uint) (domain.ScoringRound, error)
	RoundsByEventID(ctx context.Context, eventID uint) ([]domain.ScoringRound, error)
	Upsert(ctx context.Context, score domain.Score) (domain.Score, error)
	ScoresByEventID(ctx context.Context, eventID uint) ([]domain.Score, error)
}

type ScoringTeamRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Team, error)
	FindByEventID(ctx context.Context, eventID uint) ([]domain.Team, error)
}

type ScoringService struct {
	repo   ScoreRepository
	teams  ScoringTeamRepository
	events TeamEventRepository
	pub    EventPublisher
	now    func() time.Time
}

func NewScoringService(repo ScoreRepository, teams ScoringTeamRepository, events TeamEventRepository, pub EventPublisher) *ScoringService {
	return &ScoringService{
		repo:   repo,
		teams:  teams,
		events: events,
		pub:    pub,
		now:    time.Now,
	}
}

func (s *ScoringService) CreateRound(ctx context.Context, eventID uint, name string, position int) (domain.ScoringRound, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ScoringRound{}, ErrInvalidRoundName
	}

	if err := s.requireEvent(ctx, eventID); err != nil {
		return domain.ScoringRound{}, err
	}

	round, err := s.repo.CreateRound(ctx, domain.ScoringRound{
		EventID:  eventID,
		Name:     name,
		Position: position,
	})
	if err != nil {
		return domain.ScoringRound{}, fmt.Errorf("s.repo.CreateRound -> %w", err)
	}

	return round, nil
}

func (s *ScoringService) Rounds(ctx context.Context, eventID uint) ([]domain.ScoringRound, error) {
	if err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}

	rounds, err := s.repo.RoundsByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.RoundsByEventID -> %w", err)
	}

	return rounds, nil
}

// SetScore upserts the (team, round) score. Last writer wins.
func (s *ScoringService) SetScore(ctx context.Context, teamID, roundID uint, value decimal.Decimal, scorerID uint) (domain.Score, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ScoringService.SetScore")
	defer span.End()

	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, ErrTeamNotFound) {
			return domain.Score{}, ErrTeamNotFound
		}
		return domain.Score{}, fmt.Errorf("s.teams.FindByID -> %w", err)
	}

	round, err := s.repo.FindRoundByID(ctx, roundID)
	if err != nil {
		if errors.Is(err, ErrRoundNotFound) {
			return domain.Score{}, ErrRoundNotFound
		}
		return domain.Score{}, fmt.Errorf("s.repo.FindRoundByID -> %w", err)
	}

	if team.EventID != round.EventID {
		return domain.Score{}, ErrRoundNotInEvent
	}

	score, err := s.repo.Upsert(ctx, domain.Score{
		TeamID:         team.ID,
		ScoringRoundID: round.ID,
		Value:          value,
		UpdatedBy:      scorerID,
		UpdatedAt:      s.now().UTC(),
	})
	if err != nil {
		span.RecordError(err)
		return domain.Score{}, fmt.Errorf("s.repo.Upsert -> %w", err)
	}

	zap.L().Info("score updated",
		zap.Uint("team_id", team.ID),
		zap.Uint("round_id", round.ID),
		zap.String("value", score.Value.String()),
		zap.Uint("scorer_id", scorerID),
	)

	if err := s.pub.PublishJSON(ctx, EventScoreUpdated, map[string]any{
		"event_id": team.EventID,
		"team_id":  team.ID,
		"round_id": round.ID,
		"value":    score.Value,
	}); err != nil {
		zap.L().Warn("publish score failed", zap.Uint("team_id", team.ID), zap.Error(err))
	}

	return score, nil
}

// Leaderboard recomputes the ranking from the current score rows on every call.
func (s *ScoringService) Leaderboard(ctx context.Context, eventID uint) ([]domain.LeaderboardEntry, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ScoringService.Leaderboard")
	defer span.End()

	if err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}

	teams, err := s.teams.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.teams.FindByEventID -> %w", err)
	}

	rounds, err := s.repo.RoundsByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.RoundsByEventID -> %w", err)
	}

	scores, err := s.repo.ScoresByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ScoresByEventID -> %w", err)
	}

	return rankTeams(teams, rounds, scores), nil
}

func (s *ScoringService) requireEvent(ctx context.Context, eventID uint) error {
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("s.events.FindByID -> %w", err)
	}
	return nil
}

type scoreKey struct {
	teamID  uint
	roundID uint
}

// rankTeams orders by total descending, then team creation time, then team id.
// A team without a score in a round counts zero for it. Ranks never repeat.
func rankTeams(teams []domain.Team, rounds []domain.ScoringRound, scores []domain.Score) []domain.LeaderboardEntry {
	values := make(map[scoreKey]decimal.Decimal, len(scores))
	for _, sc := range scores {
		values[scoreKey{sc.TeamID, sc.ScoringRoundID}] = sc.Value
	}

	entries := make([]domain.LeaderboardEntry, 0, len(teams))
	for _, team := range teams {
		total := decimal.Zero
		perRound := make([]domain.RoundScore, 0, len(rounds))
		for _, round := range rounds {
			v := values[scoreKey{team.ID, round.ID}]
			total = total.Add(v)
			perRound = append(perRound, domain.RoundScore{
				RoundID:   round.ID,
				RoundName: round.Name,
				Value:     v,
			})
		}

		entries = append(entries, domain.LeaderboardEntry{
			Team:           team,
			TotalScore:     total,
			PerRoundScores: perRound,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if c := a.TotalScore.Cmp(b.TotalScore); c != 0 {
			return c > 0
		}
		if !a.Team.CreatedAt.Equal(b.Team.CreatedAt) {
			return a.Team.CreatedAt.Before(b.Team.CreatedAt)
		}
		return a.Team.ID < b.Team.ID
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries
}
