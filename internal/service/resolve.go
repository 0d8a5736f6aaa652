package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vietanh2810/eventpass-api/internal/domain"
)

type TokenParser interface {
	Parse(token string) (TokenSubject, error)
}

type RegistrationFinder interface {
	FindByID(ctx context.Context, id uint) (domain.Registration, error)
}

type resolution int

const (
	resolved resolution = iota
	unresolvedToken
	unresolvedRegistration
)

// resolveToken turns a presented QR code into the registration it names for the
// given event. Only storage failures come back as errors.
func resolveToken(ctx context.Context, tokens TokenParser, registrations RegistrationFinder, eventID uint, code string) (domain.Registration, resolution, error) {
	subject, err := tokens.Parse(code)
	if err != nil {
		zap.L().Info("rejected identity token",
			zap.Uint("event_id", eventID),
			zap.String("reason", TokenFailureReason(err)),
		)
		return domain.Registration{}, unresolvedToken, nil
	}

	if subject.EventID != eventID {
		return domain.Registration{}, unresolvedRegistration, nil
	}

	registration, err := registrations.FindByID(ctx, subject.RegistrationID)
	if err != nil {
		if errors.Is(err, ErrRegistrationNotFound) {
			return domain.Registration{}, unresolvedRegistration, nil
		}
		return domain.Registration{}, 0, fmt.Errorf("registrations.FindByID -> %w", err)
	}

	switch subjectMismatch(subject, registration) {
	case TokenUnknownSubject:
		return domain.Registration{}, unresolvedRegistration, nil
	case TokenRevoked:
		zap.L().Info("rejected identity token",
			zap.Uint("event_id", eventID),
			zap.Uint("registration_id", registration.ID),
			zap.String("reason", TokenRevoked),
		)
		return registration, unresolvedToken, nil
	}

	return registration, resolved, nil
}
