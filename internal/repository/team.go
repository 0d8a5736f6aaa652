package repository

import (
	"context"
	"fmt"

	"github.com/vietanh2810/eventpass-api/internal/domain"
	"github.com/vietanh2810/eventpass-api/internal/repository/dao"
)

var (
	ErrTeamNotFound       = dao.ErrTeamNotFound
	ErrTeamNameExists     = dao.ErrTeamNameExists
	ErrAlreadyOnTeam      = dao.ErrAlreadyOnTeam
	ErrMembershipNotFound = dao.ErrMembershipNotFound
)

type TeamDAO interface {
	Insert(ctx context.Context, team dao.Team) (dao.Team, error)
	FindByID(ctx context.Context, id uint) (dao.Team, error)
	FindByEventID(ctx context.Context, eventID uint) ([]dao.Team, error)
	InsertMember(ctx context.Context, member dao.TeamMember) (dao.TeamMember, error)
	FindMembership(ctx context.Context, eventID, registrationID uint) (dao.TeamMember, error)
}

type TeamRepository struct {
	dao TeamDAO
}

func NewTeamRepository(dao TeamDAO) *TeamRepository {
	return &TeamRepository{
		dao: dao,
	}
}

func (r *TeamRepository) Create(ctx context.Context, team domain.Team) (domain.Team, error) {
	created, err := r.dao.Insert(ctx, dao.Team{
		EventID: team.EventID,
		Name:    team.Name,
	})
	if err != nil {
		return domain.Team{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *TeamRepository) FindByID(ctx context.Context, id uint) (domain.Team, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Team{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *TeamRepository) FindByEventID(ctx context.Context, eventID uint) ([]domain.Team, error) {
	found, err := r.dao.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEventID -> %w", err)
	}

	teams := make([]domain.Team, len(found))
	for i, t := range found {
		teams[i] = r.daoToDomain(t)
	}
	return teams, nil
}

func (r *TeamRepository) AddMember(ctx context.Context, team domain.Team, member domain.TeamMember) error {
	_, err := r.dao.InsertMember(ctx, dao.TeamMember{
		EventID:        team.EventID,
		TeamID:         team.ID,
		RegistrationID: member.RegistrationID,
		AddedBy:        member.AddedBy,
		JoinedAt:       member.JoinedAt,
	})
	if err != nil {
		return fmt.Errorf("r.dao.InsertMember -> %w", err)
	}

	return nil
}

// TeamOf returns the team the registration belongs to within the event.
func (r *TeamRepository) TeamOf(ctx context.Context, eventID, registrationID uint) (domain.Team, error) {
	member, err := r.dao.FindMembership(ctx, eventID, registrationID)
	if err != nil {
		return domain.Team{}, fmt.Errorf("r.dao.FindMembership -> %w", err)
	}

	return r.FindByID(ctx, member.TeamID)
}

func (r *TeamRepository) daoToDomain(t dao.Team) domain.Team {
	members := make([]domain.TeamMember, len(t.Members))
	for i, m := range t.Members {
		members[i] = domain.TeamMember{
			RegistrationID: m.RegistrationID,
			AddedBy:        m.AddedBy,
			JoinedAt:       m.JoinedAt,
		}
	}

	return domain.Team{
		ID:        t.ID,
		EventID:   t.EventID,
		Name:      t.Name,
		Members:   members,
		CreatedAt: t.CreatedAt,
	}
}
