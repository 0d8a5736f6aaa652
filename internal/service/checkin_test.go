package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/eventpass-api/internal/domain"
)

func TestCheckinEngine_Idempotence(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	event := f.event(false, "Registration", "Lunch")
	require.NoError(t, f.checkpoints.Unlock(ctx, event.ID, "Registration"))
	volunteer := f.user("vera", "vera@example.com", domain.RoleVolunteer)
	reg := f.approvedToken(event.ID, "ada")

	req := CheckInRequest{EventID: event.ID, Code: reg.QRCode, Checkpoint: "Registration", VolunteerID: volunteer.ID}

	first, err := f.checkin.CheckIn(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, domain.ScanSuccess, first.Outcome)
	require.NotNil(t, first.RegistrationID)
	assert.Equal(t, reg.ID, *first.RegistrationID)

	second, err := f.checkin.CheckIn(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, domain.ScanDuplicate, second.Outcome)
	assert.NotEqual(t, first.ID, second.ID)

	history, err := f.checkin.History(ctx, event.ID, reg.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Registration", history[0].Checkpoint)
	assert.Equal(t, volunteer.ID, history[0].RecordedBy)

	stored, err := fakeRegistrations{f.store}.FindByID(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationCheckedIn, stored.Status)

	assert.Len(t, f.store.scans, 2)
	assert.Len(t, f.feed.pushed, 2)
	assert.Equal(t, []string{EventRegistrationReviewed, EventCheckInRecorded}, f.pub.keys)
}

func TestCheckinEngine_ConcurrentRace(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	event := f.event(false, "Registration")
	require.NoError(t, f.checkpoints.Unlock(ctx, event.ID, "Registration"))
	reg := f.approvedToken(event.ID, "grace")

	const n = 32
	outcomes := make(chan domain.ScanOutcome, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(volunteer uint) {
			defer wg.Done()
			attempt, err := f.checkin.CheckIn(ctx, CheckInRequest{
				EventID:     event.ID,
				Code:        reg.QRCode,
				Checkpoint:  "Registration",
				VolunteerID: volunteer,
			})
			if assert.NoError(t, err) {
				outcomes <- attempt.Outcome
			}
		}(uint(i + 1))
	}
	wg.Wait()
	close(outcomes)

	counts := map[domain.ScanOutcome]int{}
	for o := range outcomes {
		counts[o]++
	}
	assert.Equal(t, 1, counts[domain.ScanSuccess])
	assert.Equal(t, n-1, counts[domain.ScanDuplicate])

	history, err := f.checkin.History(ctx, event.ID, reg.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCheckinEngine_LockEnforcement(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	event := f.event(false, "Registration", "Lunch")
	reg := f.approvedToken(event.ID, "linus")

	attempt, err := f.checkin.CheckIn(ctx, CheckInRequest{EventID: event.ID, Code: reg.QRCode, Checkpoint: "Lunch", VolunteerID: 1})
	require.NoError(t, err)
	assert.Equal(t, domain.ScanCheckpointLocked, attempt.Outcome)

	attempt, err = f.checkin.CheckIn(ctx, CheckInRequest{EventID: event.ID, Code: reg.QRCode, Checkpoint: "Afterparty", VolunteerID: 1})
	require.NoError(t, err)
	assert.Equal(t, domain.ScanCheckpointLocked, attempt.Outcome)

	require.NoError(t, f.checkpoints.Unlock(ctx, event.ID, "Lunch"))
	require.NoError(t, f.checkpoints.Lock(ctx, event.ID, "Lunch"))

	attempt, err = f.checkin.CheckIn(ctx, CheckInRequest{EventID: event.ID, Code: reg.QRCode, Checkpoint: "Lunch", VolunteerID: 1})
	require.NoError(t, err)
	assert.Equal(t, domain.ScanCheckpointLocked, attempt.Outcome)

	history, err := f.checkin.History(ctx, event.ID, reg.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	stored, err := fakeRegistrations{f.store}.FindByID(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationApproved, stored.Status)
}

func TestCheckinEngine_Ordering(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		enforceOrder bool
		want         domain.ScanOutcome
	}{
		{name: "enforced", enforceOrder: true, want: domain.ScanOutOfOrder},
		{name: "opted out", enforceOrder: false, want: domain.ScanSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			event := f.event(tt.enforceOrder, "Registration", "Lunch", "Closing")
			for _, name := range []string{"Registration", "Lunch", "Closing"} {
				require.NoError(t, f.checkpoints.Unlock(ctx, event.ID, name))
			}
			reg := f.approvedToken(event.ID, "ken")

			attempt, err := f.checkin.CheckIn(ctx, CheckInRequest{EventID: event.ID, Code: reg.QRCode, Checkpoint: "Lunch", VolunteerID: 1})
			require.NoError(t, err)
			assert.Equal(t, tt.want, attempt.Outcome)
		})
	}

	t.Run("in sequence", func(t *testing.T) {
		f := newFixture()
		event := f.event(true, "Registration", "Lunch")
		require.NoError(t, f.checkpoints.Unlock(ctx, event.ID, "Registration"))
		require.NoError(t, f.checkpoints.Unlock(ctx, event.ID, "Lunch"))
		reg := f.approvedToken(event.ID, "barbara")

		for _, name := range []string{"Registration", "Lunch"} {
			attempt, err := f.checkin.CheckIn(ctx, CheckInRequest{EventID: event.ID, Code: reg.QRCode, Checkpoint: name, VolunteerID: 1})
			require.NoError(t, err)
			assert.Equal(t, domain.ScanSuccess, attempt.Outcome, name)
		}

		history, err := f.checkin.History(ctx, event.ID, reg.ID)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, "Registration", history[0].Checkpoint)
		assert.Equal(t, "Lunch", history[1].Checkpoint)
	})
}

func TestCheckinEngine_RejectedScans(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	event := f.event(false, "Registration")
	other := f.event(false, "Registration")
	require.NoError(t, f.checkpoints.Unlock(ctx, event.ID, "Registration"))

	approved := f.approvedToken(event.ID, "dennis")
	elsewhere := f.approvedToken(other.ID, "margaret")

	pendingUser := f.user("pending", "pending@example.com", domain.RoleApplicant)
	pending, err := f.registrations.Register(ctx, event.ID, pendingUser.ID)
	require.NoError(t, err)
	pendingToken, err := f.tokens.Issue(pendingUser.ID, event.ID, pending.ID)
	require.NoError(t, err)

	deleted := f.approvedToken(event.ID, "alan")
	require.NoError(t, f.registrations.Delete(ctx, deleted.ID))

	tests := []struct {
		name string
		code string
		want domain.ScanOutcome
	}{
		{name: "garbage", code: "hello", want: domain.ScanInvalidToken},
		{name: "empty", code: "", want: domain.ScanInvalidToken},
		{name: "oversized", code: strings.Repeat("x", 5000), want: domain.ScanInvalidToken},
		{name: "truncated", code: approved.QRCode[:len(approved.QRCode)-2], want: domain.ScanInvalidToken},
		{name: "pending registration", code: pendingToken, want: domain.ScanInvalidToken},
		{name: "other event", code: elsewhere.QRCode, want: domain.ScanNotFound},
		{name: "deleted registration", code: deleted.QRCode, want: domain.ScanNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempt, err := f.checkin.CheckIn(ctx, CheckInRequest{EventID: event.ID, Code: tt.code, Checkpoint: "Registration", VolunteerID: 9})
			require.NoError(t, err)
			assert.Equal(t, tt.want, attempt.Outcome)
			assert.NotEmpty(t, attempt.ID)
			if tt.want == domain.ScanInvalidToken {
				assert.Equal(t, "invalid token", attempt.Detail)
			}
		})
	}

	assert.Len(t, f.store.scans, len(tests))
	for _, recorded := range f.store.scans {
		assert.LessOrEqual(t, len(recorded.Code), maxRecordedCodeLength)
	}
}

func TestCheckinEngine_HistoryOtherEvent(t *testing.T) {
	f := newFixture()
	event := f.event(false, "Registration")
	other := f.event(false, "Registration")
	reg := f.approvedToken(event.ID, "edsger")

	_, err := f.checkin.History(context.Background(), other.ID, reg.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
