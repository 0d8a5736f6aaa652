package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/vietanh2810/eventpass-api/internal/domain"
)

var ErrInvalidTeamName = domain.Invalid("team name is required")

type TeamRepository interface {
	Create(ctx context.Context, team domain.Team) (domain.Team, error)
	FindByID(ctx context.Context, id uint) (domain.Team, error)
	FindByEventID(ctx context.Context, eventID uint) ([]domain.Team, error)
	AddMember(ctx context.Context, team domain.Team, member domain.TeamMember) error
	TeamOf(ctx context.Context, eventID, registrationID uint) (domain.Team, error)
}

type TeamEventRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Event, error)
}

type TeamService struct {
	repo          TeamRepository
	events        TeamEventRepository
	tokens        TokenParser
	registrations RegistrationFinder
	pub           EventPublisher
	now           func() time.Time
}

func NewTeamService(
	repo TeamRepository,
	events TeamEventRepository,
	tokens TokenParser,
	registrations RegistrationFinder,
	pub EventPublisher,
) *TeamService {
	return &TeamService{
		repo:          repo,
		events:        events,
		tokens:        tokens,
		registrations: registrations,
		pub:           pub,
		now:           time.Now,
	}
}

func (s *TeamService) CreateTeam(ctx context.Context, eventID uint, name string) (domain.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Team{}, ErrInvalidTeamName
	}

	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return domain.Team{}, ErrEventNotFound
		}
		return domain.Team{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	team, err := s.repo.Create(ctx, domain.Team{EventID: eventID, Name: name})
	if err != nil {
		if errors.Is(err, ErrTeamNameExists) {
			return domain.Team{}, ErrTeamNameExists
		}
		return domain.Team{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return team, nil
}

func (s *TeamService) GetTeam(ctx context.Context, id uint) (domain.Team, error) {
	team, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTeamNotFound) {
			return domain.Team{}, ErrTeamNotFound
		}
		return domain.Team{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return team, nil
}

// AddMember scans a participant's token into a team. Rejections are reported in
// the result; an error means the team does not exist or storage failed.
func (s *TeamService) AddMember(ctx context.Context, teamID uint, code string, addedBy uint) (domain.AddMemberResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "TeamService.AddMember")
	defer span.End()

	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return domain.AddMemberResult{}, err
	}

	registration, res, err := resolveToken(ctx, s.tokens, s.registrations, team.EventID, code)
	if err != nil {
		span.RecordError(err)
		return domain.AddMemberResult{}, domain.Internal(err)
	}
	switch res {
	case unresolvedToken:
		return domain.AddMemberResult{Outcome: domain.TeamScanInvalidToken}, nil
	case unresolvedRegistration:
		return domain.AddMemberResult{Outcome: domain.TeamScanNotFound}, nil
	}

	if result, done, err := s.existingMembership(ctx, team, registration.ID); err != nil || done {
		return result, err
	}

	err = s.repo.AddMember(ctx, team, domain.TeamMember{
		RegistrationID: registration.ID,
		AddedBy:        addedBy,
		JoinedAt:       s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyOnTeam) {
			// Lost a race with a concurrent add; report whoever won.
			if result, done, err := s.existingMembership(ctx, team, registration.ID); err != nil || done {
				return result, err
			}
		}
		span.RecordError(err)
		return domain.AddMemberResult{}, domain.Internal(fmt.Errorf("s.repo.AddMember -> %w", err))
	}

	zap.L().Info("team member added",
		zap.Uint("team_id", team.ID),
		zap.Uint("registration_id", registration.ID),
		zap.Uint("added_by", addedBy),
	)

	if err := s.pub.PublishJSON(ctx, EventTeamMemberAdded, map[string]any{
		"event_id":        team.EventID,
		"team_id":         team.ID,
		"registration_id": registration.ID,
		"added_by":        addedBy,
	}); err != nil {
		zap.L().Warn("publish team member failed", zap.Uint("team_id", team.ID), zap.Error(err))
	}

	return domain.AddMemberResult{
		Outcome:        domain.TeamScanAccepted,
		RegistrationID: registration.ID,
		TeamName:       team.Name,
	}, nil
}

func (s *TeamService) existingMembership(ctx context.Context, target domain.Team, registrationID uint) (domain.AddMemberResult, bool, error) {
	current, err := s.repo.TeamOf(ctx, target.EventID, registrationID)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			return domain.AddMemberResult{}, false, nil
		}
		return domain.AddMemberResult{}, true, domain.Internal(fmt.Errorf("s.repo.TeamOf -> %w", err))
	}

	result := domain.AddMemberResult{
		RegistrationID: registrationID,
		TeamName:       current.Name,
	}

	if current.ID == target.ID {
		zap.L().Info("participant scanned twice into team",
			zap.Uint("team_id", target.ID),
			zap.Uint("registration_id", registrationID),
		)
		result.Outcome = domain.TeamScanAlreadyScanned
		return result, true, nil
	}

	zap.L().Info("participant already on another team",
		zap.Uint("team_id", target.ID),
		zap.Uint("current_team_id", current.ID),
		zap.Uint("registration_id", registrationID),
	)
	result.Outcome = domain.TeamScanAlreadyOnTeam
	return result, true, nil
}

func (s *TeamService) ListTeams(ctx context.Context, eventID uint) ([]domain.Team, error) {
	teams, err := s.repo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByEventID -> %w", err)
	}

	return teams, nil
}
