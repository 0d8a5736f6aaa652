package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/eventpass-api/internal/domain"
)

func TestTeamService_AddMember(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	event := f.event(false)
	mentor := f.user("mentor", "mentor@example.com", domain.RoleMentor)

	teamA, err := f.teams.CreateTeam(ctx, event.ID, "Alpha")
	require.NoError(t, err)
	teamB, err := f.teams.CreateTeam(ctx, event.ID, "Beta")
	require.NoError(t, err)

	x := f.approvedToken(event.ID, "ada")
	y := f.approvedToken(event.ID, "grace")

	result, err := f.teams.AddMember(ctx, teamA.ID, x.QRCode, mentor.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TeamScanAccepted, result.Outcome)
	assert.Equal(t, x.ID, result.RegistrationID)

	result, err = f.teams.AddMember(ctx, teamB.ID, x.QRCode, mentor.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TeamScanAlreadyOnTeam, result.Outcome)
	assert.Equal(t, "Alpha", result.TeamName)

	result, err = f.teams.AddMember(ctx, teamA.ID, x.QRCode, mentor.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TeamScanAlreadyScanned, result.Outcome)

	result, err = f.teams.AddMember(ctx, teamA.ID, y.QRCode, mentor.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TeamScanAccepted, result.Outcome)

	team, err := f.teams.GetTeam(ctx, teamA.ID)
	require.NoError(t, err)
	require.Len(t, team.Members, 2)
	assert.Equal(t, x.ID, team.Members[0].RegistrationID)
	assert.Equal(t, y.ID, team.Members[1].RegistrationID)
	assert.Equal(t, mentor.ID, team.Members[0].AddedBy)

	beta, err := f.teams.GetTeam(ctx, teamB.ID)
	require.NoError(t, err)
	assert.Empty(t, beta.Members)
}

func TestTeamService_AddMemberRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	event := f.event(false)
	other := f.event(false)
	team, err := f.teams.CreateTeam(ctx, event.ID, "Alpha")
	require.NoError(t, err)

	elsewhere := f.approvedToken(other.ID, "linus")

	result, err := f.teams.AddMember(ctx, team.ID, "garbage", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.TeamScanInvalidToken, result.Outcome)

	result, err = f.teams.AddMember(ctx, team.ID, elsewhere.QRCode, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.TeamScanNotFound, result.Outcome)

	_, err = f.teams.AddMember(ctx, 9999, elsewhere.QRCode, 1)
	assert.ErrorIs(t, err, ErrTeamNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTeamService_ConcurrentAddAcrossTeams(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	event := f.event(false)
	x := f.approvedToken(event.ID, "ken")

	var teams []domain.Team
	for _, name := range []string{"Alpha", "Beta", "Gamma", "Delta"} {
		team, err := f.teams.CreateTeam(ctx, event.ID, name)
		require.NoError(t, err)
		teams = append(teams, team)
	}

	results := make(chan domain.AddMemberResult, len(teams))
	var wg sync.WaitGroup
	for _, team := range teams {
		wg.Add(1)
		go func(teamID uint) {
			defer wg.Done()
			result, err := f.teams.AddMember(ctx, teamID, x.QRCode, 1)
			if assert.NoError(t, err) {
				results <- result
			}
		}(team.ID)
	}
	wg.Wait()
	close(results)

	accepted := 0
	for r := range results {
		switch r.Outcome {
		case domain.TeamScanAccepted:
			accepted++
		case domain.TeamScanAlreadyOnTeam:
		default:
			t.Errorf("unexpected outcome %q", r.Outcome)
		}
	}
	assert.Equal(t, 1, accepted)
}

func TestTeamService_CreateTeam(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	event := f.event(false)

	_, err := f.teams.CreateTeam(ctx, event.ID, "Alpha")
	require.NoError(t, err)

	_, err = f.teams.CreateTeam(ctx, event.ID, "Alpha")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.teams.CreateTeam(ctx, event.ID, "  ")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = f.teams.CreateTeam(ctx, 4242, "Alpha")
	assert.ErrorIs(t, err, ErrEventNotFound)
}
