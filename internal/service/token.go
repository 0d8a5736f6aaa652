package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vietanh2810/eventpass-api/internal/domain"
)

const minTokenKeyLength = 32

var ErrInvalidToken = domain.Invalid("invalid token")

// Internal reasons a token is refused. They are logged, never returned to callers.
const (
	TokenMalformed         = "malformed"
	TokenSignatureMismatch = "signature-mismatch"
	TokenUnknownSubject    = "unknown-subject"
	TokenRevoked           = "revoked"
)

// InvalidTokenError hides the failure reason behind a generic message.
type InvalidTokenError struct {
	Reason string
	cause  error
}

func (e *InvalidTokenError) Error() string { return ErrInvalidToken.Error() }

func (e *InvalidTokenError) Unwrap() error { return ErrInvalidToken }

// Cause is the underlying parse or lookup error, for server-side logs.
func (e *InvalidTokenError) Cause() error { return e.cause }

func invalidToken(reason string, cause error) error {
	return &InvalidTokenError{Reason: reason, cause: cause}
}

// TokenFailureReason extracts the internal reason from a token error.
func TokenFailureReason(err error) string {
	var tokenErr *InvalidTokenError
	if errors.As(err, &tokenErr) {
		return tokenErr.Reason
	}
	return ""
}

type TokenSubject struct {
	ParticipantID  uint
	EventID        uint
	RegistrationID uint
}

type identityClaims struct {
	ParticipantID  uint `json:"pid"`
	EventID        uint `json:"eid"`
	RegistrationID uint `json:"rid"`
	jwt.RegisteredClaims
}

type TokenRegistrationRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Registration, error)
}

// TokenService issues and verifies the identity tokens printed as QR codes.
// Tokens carry no expiry; revocation comes from re-resolving the registration.
type TokenService struct {
	key  []byte
	repo TokenRegistrationRepository
	now  func() time.Time
}

func NewTokenService(key []byte, repo TokenRegistrationRepository) (*TokenService, error) {
	if len(key) < minTokenKeyLength {
		return nil, fmt.Errorf("token signing key must be at least %d bytes", minTokenKeyLength)
	}

	return &TokenService{
		key:  key,
		repo: repo,
		now:  time.Now,
	}, nil
}

// Issue signs a fresh token for the triple. Every call yields a different string
// (new jti and issuance time) that verifies to the same subject.
func (s *TokenService) Issue(participantID, eventID, registrationID uint) (string, error) {
	claims := identityClaims{
		ParticipantID:  participantID,
		EventID:        eventID,
		RegistrationID: registrationID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("token.SignedString -> %w", err)
	}

	return token, nil
}

// Parse checks format and signature only. It never touches storage.
func (s *TokenService) Parse(token string) (TokenSubject, error) {
	claims := &identityClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithStrictDecoding())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return TokenSubject{}, invalidToken(TokenSignatureMismatch, err)
		}
		return TokenSubject{}, invalidToken(TokenMalformed, err)
	}

	if claims.RegistrationID == 0 || claims.EventID == 0 || claims.ParticipantID == 0 {
		return TokenSubject{}, invalidToken(TokenMalformed, errors.New("missing subject claims"))
	}

	return TokenSubject{
		ParticipantID:  claims.ParticipantID,
		EventID:        claims.EventID,
		RegistrationID: claims.RegistrationID,
	}, nil
}

// Verify parses the token and re-resolves its registration, so deleted, rejected
// or reassigned registrations stop validating immediately.
func (s *TokenService) Verify(ctx context.Context, token string) (TokenSubject, error) {
	subject, err := s.Parse(token)
	if err != nil {
		return TokenSubject{}, err
	}

	registration, err := s.repo.FindByID(ctx, subject.RegistrationID)
	if err != nil {
		if errors.Is(err, ErrRegistrationNotFound) {
			return TokenSubject{}, invalidToken(TokenUnknownSubject, err)
		}
		return TokenSubject{}, domain.Internal(fmt.Errorf("s.repo.FindByID -> %w", err))
	}

	if reason := subjectMismatch(subject, registration); reason != "" {
		return TokenSubject{}, invalidToken(reason, nil)
	}

	return subject, nil
}

func subjectMismatch(subject TokenSubject, registration domain.Registration) string {
	if registration.EventID != subject.EventID || registration.UserID != subject.ParticipantID {
		return TokenUnknownSubject
	}
	if !registration.Admitted() {
		return TokenRevoked
	}
	return ""
}
