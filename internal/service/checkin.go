package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/vietanh2810/eventpass-api/internal/domain"
)

const tracerName = "github.com/vietanh2810/eventpass-api/internal/service"

// Longer presented codes are cut to this length in the scan log.
const maxRecordedCodeLength = 4096

// Routing keys for domain events.
const (
	EventCheckInRecorded      = "checkin.recorded"
	EventTeamMemberAdded      = "team.member_added"
	EventScoreUpdated         = "score.updated"
	EventRegistrationReviewed = "registration.reviewed"
)

type CheckinRegistrationRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Registration, error)
	AppendCheckIn(ctx context.Context, registrationID uint, checkIn domain.CheckpointCheckIn) (bool, error)
}

type CheckinEventRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Event, error)
}

type ScanRecorder interface {
	Append(ctx context.Context, attempt domain.ScanAttempt) (domain.ScanAttempt, error)
}

// ScanFeed fans recorded scan attempts out to live dashboards.
type ScanFeed interface {
	Push(ctx context.Context, attempt domain.ScanAttempt) error
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, v any) error
}

type CheckInRequest struct {
	EventID     uint
	Code        string
	Checkpoint  string
	VolunteerID uint
}

// CheckinEngine validates scans at checkpoints and records one scan attempt per call.
type CheckinEngine struct {
	tokens        TokenParser
	events        CheckinEventRepository
	registrations CheckinRegistrationRepository
	scans         ScanRecorder
	feed          ScanFeed
	pub           EventPublisher
	now           func() time.Time
}

func NewCheckinEngine(
	tokens TokenParser,
	events CheckinEventRepository,
	registrations CheckinRegistrationRepository,
	scans ScanRecorder,
	feed ScanFeed,
	pub EventPublisher,
) *CheckinEngine {
	return &CheckinEngine{
		tokens:        tokens,
		events:        events,
		registrations: registrations,
		scans:         scans,
		feed:          feed,
		pub:           pub,
		now:           time.Now,
	}
}

type verdict struct {
	outcome        domain.ScanOutcome
	detail         string
	registrationID *uint
	registration   domain.Registration
}

// CheckIn evaluates one scan. Every rejection is a normal outcome on the returned
// attempt; an error means storage failed and the scan may be retried as-is.
func (e *CheckinEngine) CheckIn(ctx context.Context, req CheckInRequest) (domain.ScanAttempt, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "CheckinEngine.CheckIn", trace.WithAttributes(
		attribute.Int64("event.id", int64(req.EventID)),
		attribute.String("checkpoint", req.Checkpoint),
	))
	defer span.End()

	req.Checkpoint = strings.TrimSpace(req.Checkpoint)

	attempt := domain.ScanAttempt{
		ID:          uuid.NewString(),
		EventID:     req.EventID,
		VolunteerID: req.VolunteerID,
		Code:        recordedCode(req.Code),
		Checkpoint:  req.Checkpoint,
		Timestamp:   e.now().UTC(),
	}

	v, err := e.evaluate(ctx, req, attempt.Timestamp)
	if err != nil {
		span.RecordError(err)
		zap.L().Error("check-in failed",
			zap.Uint("event_id", req.EventID),
			zap.String("checkpoint", req.Checkpoint),
			zap.Error(err),
		)
		return domain.ScanAttempt{}, domain.Internal(err)
	}

	attempt.Outcome = v.outcome
	attempt.Detail = v.detail
	attempt.RegistrationID = v.registrationID
	span.SetAttributes(attribute.String("scan.outcome", string(v.outcome)))

	recorded, err := e.scans.Append(ctx, attempt)
	if err != nil {
		span.RecordError(err)
		return domain.ScanAttempt{}, domain.Internal(fmt.Errorf("e.scans.Append -> %w", err))
	}

	zap.L().Info("scan recorded",
		zap.String("scan_id", recorded.ID),
		zap.Uint("event_id", recorded.EventID),
		zap.String("checkpoint", recorded.Checkpoint),
		zap.String("outcome", string(recorded.Outcome)),
	)

	if err := e.feed.Push(ctx, recorded); err != nil {
		zap.L().Warn("scan feed push failed", zap.String("scan_id", recorded.ID), zap.Error(err))
	}

	if recorded.Outcome == domain.ScanSuccess {
		if err := e.pub.PublishJSON(ctx, EventCheckInRecorded, map[string]any{
			"event_id":        recorded.EventID,
			"registration_id": v.registration.ID,
			"participant_id":  v.registration.UserID,
			"checkpoint":      recorded.Checkpoint,
			"volunteer_id":    recorded.VolunteerID,
			"timestamp":       recorded.Timestamp,
		}); err != nil {
			zap.L().Warn("publish check-in failed", zap.String("scan_id", recorded.ID), zap.Error(err))
		}
	}

	return recorded, nil
}

func (e *CheckinEngine) evaluate(ctx context.Context, req CheckInRequest, at time.Time) (verdict, error) {
	registration, res, err := resolveToken(ctx, e.tokens, e.registrations, req.EventID, req.Code)
	if err != nil {
		return verdict{}, err
	}
	switch res {
	case unresolvedToken:
		return verdict{outcome: domain.ScanInvalidToken, detail: ErrInvalidToken.Error()}, nil
	case unresolvedRegistration:
		return verdict{outcome: domain.ScanNotFound, detail: "no registration for this event"}, nil
	}

	registrationID := registration.ID
	v := verdict{registrationID: &registrationID, registration: registration}

	event, err := e.events.FindByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			v.outcome, v.detail = domain.ScanNotFound, "event not found"
			return v, nil
		}
		return verdict{}, fmt.Errorf("e.events.FindByID -> %w", err)
	}

	target, ok := findCheckpoint(event, req.Checkpoint)
	if !ok {
		v.outcome, v.detail = domain.ScanCheckpointLocked, fmt.Sprintf("unknown checkpoint %q", req.Checkpoint)
		return v, nil
	}
	if !target.Unlocked {
		v.outcome, v.detail = domain.ScanCheckpointLocked, fmt.Sprintf("checkpoint %q is locked", target.Name)
		return v, nil
	}

	if event.EnforceOrder {
		if missing := firstMissingBefore(event, registration, target); missing != "" {
			v.outcome, v.detail = domain.ScanOutOfOrder, fmt.Sprintf("checkpoint %q not yet recorded", missing)
			return v, nil
		}
	}

	if registration.HasCheckedIn(target.Name) {
		v.outcome, v.detail = domain.ScanDuplicate, fmt.Sprintf("already checked in at %q", target.Name)
		return v, nil
	}

	first, err := e.registrations.AppendCheckIn(ctx, registration.ID, domain.CheckpointCheckIn{
		Checkpoint: target.Name,
		Timestamp:  at,
		RecordedBy: req.VolunteerID,
	})
	if err != nil {
		if errors.Is(err, ErrCheckInExists) {
			v.outcome, v.detail = domain.ScanDuplicate, fmt.Sprintf("already checked in at %q", target.Name)
			return v, nil
		}
		return verdict{}, fmt.Errorf("e.registrations.AppendCheckIn -> %w", err)
	}

	if first {
		zap.L().Info("registration checked in",
			zap.Uint("event_id", event.ID),
			zap.Uint("registration_id", registration.ID),
		)
	}

	v.outcome = domain.ScanSuccess
	return v, nil
}

// History returns the registration's check-ins in the order they were recorded.
func (e *CheckinEngine) History(ctx context.Context, eventID, registrationID uint) ([]domain.CheckpointCheckIn, error) {
	registration, err := e.registrations.FindByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("e.registrations.FindByID -> %w", err)
	}
	if registration.EventID != eventID {
		return nil, ErrRegistrationElsewhere
	}

	if registration.CheckpointCheckIns == nil {
		return []domain.CheckpointCheckIn{}, nil
	}
	return registration.CheckpointCheckIns, nil
}

func recordedCode(code string) string {
	if len(code) > maxRecordedCodeLength {
		return code[:maxRecordedCodeLength]
	}
	return code
}

func findCheckpoint(event domain.Event, name string) (domain.Checkpoint, bool) {
	for _, cp := range event.Checkpoints {
		if cp.Name == name {
			return cp, true
		}
	}
	return domain.Checkpoint{}, false
}

func firstMissingBefore(event domain.Event, registration domain.Registration, target domain.Checkpoint) string {
	for _, cp := range event.Checkpoints {
		if cp.Position >= target.Position {
			continue
		}
		if !registration.HasCheckedIn(cp.Name) {
			return cp.Name
		}
	}
	return ""
}
