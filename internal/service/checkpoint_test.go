package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/eventpass-api/internal/domain"
)

func TestCheckpointRegistry(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	event := f.event(false, "Registration", "Lunch")

	order, err := f.checkpoints.Order(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Registration", "Lunch"}, order)

	unlocked, err := f.checkpoints.IsUnlocked(ctx, event.ID, "Lunch")
	require.NoError(t, err)
	assert.False(t, unlocked)

	// Unlocking out of sequence and twice is fine.
	require.NoError(t, f.checkpoints.Unlock(ctx, event.ID, "Lunch"))
	require.NoError(t, f.checkpoints.Unlock(ctx, event.ID, "Lunch"))

	unlocked, err = f.checkpoints.IsUnlocked(ctx, event.ID, "Lunch")
	require.NoError(t, err)
	assert.True(t, unlocked)

	err = f.checkpoints.Unlock(ctx, event.ID, "Afterparty")
	assert.ErrorIs(t, err, ErrCheckpointNotFound)
	assert.ErrorIs(t, err, ErrPolicyViolation)

	unlocked, err = f.checkpoints.IsUnlocked(ctx, event.ID, "Afterparty")
	require.NoError(t, err)
	assert.False(t, unlocked)

	cp, err := f.checkpoints.Add(ctx, event.ID, "Closing")
	require.NoError(t, err)
	assert.Equal(t, domain.Checkpoint{Name: "Closing", Position: 2}, cp)

	_, err = f.checkpoints.Add(ctx, event.ID, "Lunch")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.checkpoints.Add(ctx, event.ID, " ")
	assert.ErrorIs(t, err, ErrInvalid)

	list, err := f.checkpoints.List(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Checkpoint{
		{Name: "Registration", Position: 0},
		{Name: "Lunch", Position: 1, Unlocked: true},
		{Name: "Closing", Position: 2},
	}, list)

	_, err = f.checkpoints.Order(ctx, 4242)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestCheckpointRegistry_Limit(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	names := make([]string, domain.MaxCheckpoints)
	for i := range names {
		names[i] = fmt.Sprintf("cp-%02d", i)
	}
	event := f.event(false, names...)

	_, err := f.checkpoints.Add(ctx, event.ID, "one-too-many")
	assert.ErrorIs(t, err, ErrCheckpointLimit)
	assert.ErrorIs(t, err, ErrPolicyViolation)

	order, err := f.checkpoints.Order(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, order, domain.MaxCheckpoints)
	assert.Equal(t, "cp-98", order[len(order)-1])

	tooMany := make([]domain.Checkpoint, domain.MaxCheckpoints+1)
	for i := range tooMany {
		tooMany[i].Name = fmt.Sprintf("cp-%03d", i)
	}
	_, err = f.events.CreateEvent(ctx, domain.Event{Name: "Big", Checkpoints: tooMany})
	assert.ErrorIs(t, err, ErrCheckpointLimit)
}

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.events.CreateEvent(ctx, domain.Event{Name: ""})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = f.events.CreateEvent(ctx, domain.Event{Name: "Dup", Checkpoints: []domain.Checkpoint{{Name: "A"}, {Name: " A "}}})
	assert.ErrorIs(t, err, ErrInvalid)

	created, err := f.events.CreateEvent(ctx, domain.Event{Name: "Hack", Checkpoints: []domain.Checkpoint{{Name: "A", Unlocked: true}, {Name: "B"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, created.CheckpointNames())
	assert.Empty(t, created.UnlockedCheckpoints())

	got, err := f.events.GetEvent(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}
