package service

import (
	"github.com/vietanh2810/eventpass-api/internal/domain"
	"github.com/vietanh2810/eventpass-api/internal/repository"
)

var (
	ErrInvalid         = domain.ErrInvalid
	ErrNotFound        = domain.ErrNotFound
	ErrConflict        = domain.ErrConflict
	ErrPolicyViolation = domain.ErrPolicyViolation
	ErrInternal        = domain.ErrInternal
)

var (
	ErrEventNotFound        = repository.ErrEventNotFound
	ErrCheckpointNotFound   = repository.ErrCheckpointNotFound
	ErrCheckpointExists     = repository.ErrCheckpointExists
	ErrCheckpointLimit      = repository.ErrCheckpointLimit
	ErrRegistrationNotFound = repository.ErrRegistrationNotFound
	ErrRegistrationExists   = repository.ErrRegistrationExists
	ErrTeamNotFound         = repository.ErrTeamNotFound
	ErrTeamNameExists       = repository.ErrTeamNameExists
	ErrRoundNotFound        = repository.ErrRoundNotFound
	ErrCheckInExists        = repository.ErrCheckInExists
	ErrStatusChanged        = repository.ErrStatusChanged
	ErrAlreadyOnTeam        = repository.ErrAlreadyOnTeam
	ErrMembershipNotFound   = repository.ErrMembershipNotFound
	ErrUserNotFound         = repository.ErrUserNotFound
	ErrUserEmailExists      = repository.ErrUserEmailExists

	ErrInvalidCheckpointName = domain.Invalid("checkpoint name is required")
	ErrRegistrationClosed    = domain.PolicyViolation("registration is closed for this event")
	ErrRegistrationNotOpen   = domain.PolicyViolation("registration is not approved")
	ErrAlreadyCheckedIn      = domain.PolicyViolation("a checked-in registration cannot be rejected")
	ErrRoundNotInEvent       = domain.PolicyViolation("team and scoring round belong to different events")
	ErrRegistrationElsewhere = domain.NotFound("registration does not belong to this event")
)
