package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vietanh2810/eventpass-api/internal/domain"
)

type CheckpointRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	AppendCheckpoint(ctx context.Context, eventID uint, name string) (domain.Checkpoint, error)
	SetCheckpointUnlocked(ctx context.Context, eventID uint, name string, unlocked bool) error
}

// CheckpointRegistry holds each event's ordered checkpoint sequence and which of
// them are currently accepting scans.
type CheckpointRegistry struct {
	repo CheckpointRepository
}

func NewCheckpointRegistry(repo CheckpointRepository) *CheckpointRegistry {
	return &CheckpointRegistry{
		repo: repo,
	}
}

// Add appends a checkpoint to the end of the event's sequence. New checkpoints start locked.
func (r *CheckpointRegistry) Add(ctx context.Context, eventID uint, name string) (domain.Checkpoint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Checkpoint{}, ErrInvalidCheckpointName
	}

	checkpoint, err := r.repo.AppendCheckpoint(ctx, eventID, name)
	if err != nil {
		return domain.Checkpoint{}, fmt.Errorf("r.repo.AppendCheckpoint -> %w", err)
	}

	return checkpoint, nil
}

// Unlock is idempotent.
func (r *CheckpointRegistry) Unlock(ctx context.Context, eventID uint, name string) error {
	return r.setUnlocked(ctx, eventID, name, true)
}

// Lock is idempotent. Check-ins already recorded at the checkpoint are kept.
func (r *CheckpointRegistry) Lock(ctx context.Context, eventID uint, name string) error {
	return r.setUnlocked(ctx, eventID, name, false)
}

func (r *CheckpointRegistry) setUnlocked(ctx context.Context, eventID uint, name string, unlocked bool) error {
	if err := r.repo.SetCheckpointUnlocked(ctx, eventID, name, unlocked); err != nil {
		return fmt.Errorf("r.repo.SetCheckpointUnlocked -> %w", err)
	}

	zap.L().Info("checkpoint state changed",
		zap.Uint("event_id", eventID),
		zap.String("checkpoint", name),
		zap.Bool("unlocked", unlocked),
	)

	return nil
}

// IsUnlocked reports false for names outside the event's sequence.
func (r *CheckpointRegistry) IsUnlocked(ctx context.Context, eventID uint, name string) (bool, error) {
	checkpoints, err := r.List(ctx, eventID)
	if err != nil {
		return false, err
	}

	for _, cp := range checkpoints {
		if cp.Name == name {
			return cp.Unlocked, nil
		}
	}

	return false, nil
}

// Order returns checkpoint names in sequence order.
func (r *CheckpointRegistry) Order(ctx context.Context, eventID uint) ([]string, error) {
	checkpoints, err := r.List(ctx, eventID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(checkpoints))
	for _, cp := range checkpoints {
		names = append(names, cp.Name)
	}

	return names, nil
}

func (r *CheckpointRegistry) List(ctx context.Context, eventID uint) ([]domain.Checkpoint, error) {
	event, err := r.repo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("r.repo.FindByID -> %w", err)
	}

	return event.Checkpoints, nil
}
