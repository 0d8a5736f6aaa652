package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vietanh2810/eventpass-api/internal/domain"
)

type RegistrationRepository interface {
	Create(ctx context.Context, registration domain.Registration) (domain.Registration, error)
	FindByID(ctx context.Context, id uint) (domain.Registration, error)
	UpdateStatus(ctx context.Context, id uint, from []domain.RegistrationStatus, to domain.RegistrationStatus) (domain.Registration, error)
	SetQRCode(ctx context.Context, id uint, code string) (domain.Registration, error)
	Delete(ctx context.Context, id uint) error
}

type TokenIssuer interface {
	Issue(participantID, eventID, registrationID uint) (string, error)
}

type RegistrationService struct {
	repo   RegistrationRepository
	events EventRepository
	tokens TokenIssuer
	pub    EventPublisher
}

func NewRegistrationService(repo RegistrationRepository, events EventRepository, tokens TokenIssuer, pub EventPublisher) *RegistrationService {
	return &RegistrationService{
		repo:   repo,
		events: events,
		tokens: tokens,
		pub:    pub,
	}
}

func (s *RegistrationService) Register(ctx context.Context, eventID, userID uint) (domain.Registration, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return domain.Registration{}, ErrEventNotFound
		}
		return domain.Registration{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}
	if !event.RegistrationOpen {
		return domain.Registration{}, ErrRegistrationClosed
	}

	registration, err := s.repo.Create(ctx, domain.Registration{
		EventID: eventID,
		UserID:  userID,
		Status:  domain.RegistrationPending,
	})
	if err != nil {
		if errors.Is(err, ErrRegistrationExists) {
			return domain.Registration{}, ErrRegistrationExists
		}
		return domain.Registration{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return registration, nil
}

func (s *RegistrationService) GetRegistration(ctx context.Context, id uint) (domain.Registration, error) {
	registration, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRegistrationNotFound) {
			return domain.Registration{}, ErrRegistrationNotFound
		}
		return domain.Registration{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return registration, nil
}

// Review approves or rejects a registration. Approval issues the identity token;
// rejection revokes it without deleting it.
func (s *RegistrationService) Review(ctx context.Context, id uint, approve bool, reviewerID uint) (domain.Registration, error) {
	registration, err := s.GetRegistration(ctx, id)
	if err != nil {
		return domain.Registration{}, err
	}

	switch {
	case approve && registration.Admitted():
	case approve:
		registration, err = s.repo.UpdateStatus(ctx, id,
			[]domain.RegistrationStatus{domain.RegistrationPending, domain.RegistrationRejected},
			domain.RegistrationApproved)
	case registration.Status == domain.RegistrationCheckedIn:
		return domain.Registration{}, ErrAlreadyCheckedIn
	case registration.Status == domain.RegistrationRejected:
	default:
		registration, err = s.repo.UpdateStatus(ctx, id,
			[]domain.RegistrationStatus{domain.RegistrationPending, domain.RegistrationApproved},
			domain.RegistrationRejected)
	}
	if err != nil {
		if errors.Is(err, ErrStatusChanged) {
			return domain.Registration{}, ErrStatusChanged
		}
		return domain.Registration{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	if approve {
		if registration, err = s.ensureToken(ctx, registration); err != nil {
			return domain.Registration{}, err
		}
	}

	zap.L().Info("registration reviewed",
		zap.Uint("registration_id", registration.ID),
		zap.String("status", string(registration.Status)),
		zap.Uint("reviewer_id", reviewerID),
	)

	if err := s.pub.PublishJSON(ctx, EventRegistrationReviewed, map[string]any{
		"event_id":        registration.EventID,
		"registration_id": registration.ID,
		"status":          registration.Status,
	}); err != nil {
		zap.L().Warn("publish review failed", zap.Uint("registration_id", registration.ID), zap.Error(err))
	}

	return registration, nil
}

// Token returns the registration's identity token, issuing it on first use.
func (s *RegistrationService) Token(ctx context.Context, id uint) (domain.Registration, error) {
	registration, err := s.GetRegistration(ctx, id)
	if err != nil {
		return domain.Registration{}, err
	}
	if !registration.Admitted() {
		return domain.Registration{}, ErrRegistrationNotOpen
	}

	return s.ensureToken(ctx, registration)
}

func (s *RegistrationService) ensureToken(ctx context.Context, registration domain.Registration) (domain.Registration, error) {
	if registration.QRCode != "" {
		return registration, nil
	}

	code, err := s.tokens.Issue(registration.UserID, registration.EventID, registration.ID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.tokens.Issue -> %w", err)
	}

	updated, err := s.repo.SetQRCode(ctx, registration.ID, code)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.repo.SetQRCode -> %w", err)
	}

	return updated, nil
}

// Delete removes the registration with its check-ins and team membership. Its
// token stops verifying immediately.
func (s *RegistrationService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrRegistrationNotFound) {
			return ErrRegistrationNotFound
		}
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	zap.L().Info("registration deleted", zap.Uint("registration_id", id))

	return nil
}
