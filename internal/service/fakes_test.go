package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vietanh2810/eventpass-api/internal/domain"
)

// memStore is a mutex-guarded stand-in for the database with the same uniqueness
// rules the schema enforces.
type memStore struct {
	mu            sync.Mutex
	nextID        uint
	events        map[uint]domain.Event
	registrations map[uint]domain.Registration
	teams         map[uint]domain.Team
	membership    map[[2]uint]uint // (eventID, registrationID) -> teamID
	rounds        map[uint]domain.ScoringRound
	scores        map[[2]uint]domain.Score
	scans         []domain.ScanAttempt
	users         map[uint]domain.User
	clock         time.Time
}

func newMemStore() *memStore {
	return &memStore{
		events:        map[uint]domain.Event{},
		registrations: map[uint]domain.Registration{},
		teams:         map[uint]domain.Team{},
		membership:    map[[2]uint]uint{},
		rounds:        map[uint]domain.ScoringRound{},
		scores:        map[[2]uint]domain.Score{},
		users:         map[uint]domain.User{},
		clock:         time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

type fakeEvents struct{ *memStore }

func (f fakeEvents) Create(_ context.Context, event domain.Event) (domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	event.ID = f.id()
	event.CreatedAt = f.tick()
	event.Checkpoints = append([]domain.Checkpoint(nil), event.Checkpoints...)
	f.events[event.ID] = event
	return event, nil
}

func (f fakeEvents) FindByID(_ context.Context, id uint) (domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[id]
	if !ok {
		return domain.Event{}, ErrEventNotFound
	}
	event.Checkpoints = append([]domain.Checkpoint(nil), event.Checkpoints...)
	return event, nil
}

func (f fakeEvents) AppendCheckpoint(_ context.Context, eventID uint, name string) (domain.Checkpoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[eventID]
	if !ok {
		return domain.Checkpoint{}, ErrEventNotFound
	}
	for _, cp := range event.Checkpoints {
		if cp.Name == name {
			return domain.Checkpoint{}, ErrCheckpointExists
		}
	}
	if len(event.Checkpoints) >= domain.MaxCheckpoints {
		return domain.Checkpoint{}, ErrCheckpointLimit
	}
	cp := domain.Checkpoint{Name: name, Position: len(event.Checkpoints)}
	event.Checkpoints = append(event.Checkpoints, cp)
	f.events[eventID] = event
	return cp, nil
}

func (f fakeEvents) SetCheckpointUnlocked(_ context.Context, eventID uint, name string, unlocked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[eventID]
	if !ok {
		return ErrEventNotFound
	}
	for i := range event.Checkpoints {
		if event.Checkpoints[i].Name == name {
			event.Checkpoints[i].Unlocked = unlocked
			return nil
		}
	}
	return ErrCheckpointNotFound
}

type fakeRegistrations struct{ *memStore }

func (f fakeRegistrations) Create(_ context.Context, registration domain.Registration) (domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.registrations {
		if r.EventID == registration.EventID && r.UserID == registration.UserID {
			return domain.Registration{}, ErrRegistrationExists
		}
	}
	registration.ID = f.id()
	registration.CreatedAt = f.tick()
	f.registrations[registration.ID] = registration
	return registration, nil
}

func (f fakeRegistrations) FindByID(_ context.Context, id uint) (domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.registrations[id]
	if !ok {
		return domain.Registration{}, ErrRegistrationNotFound
	}
	r.CheckpointCheckIns = append([]domain.CheckpointCheckIn(nil), r.CheckpointCheckIns...)
	return r, nil
}

func (f fakeRegistrations) UpdateStatus(_ context.Context, id uint, from []domain.RegistrationStatus, to domain.RegistrationStatus) (domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.registrations[id]
	if !ok {
		return domain.Registration{}, ErrRegistrationNotFound
	}
	for _, s := range from {
		if r.Status == s {
			r.Status = to
			f.registrations[id] = r
			return r, nil
		}
	}
	return domain.Registration{}, ErrStatusChanged
}

func (f fakeRegistrations) SetQRCode(_ context.Context, id uint, code string) (domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.registrations[id]
	if !ok {
		return domain.Registration{}, ErrRegistrationNotFound
	}
	if r.QRCode == "" {
		r.QRCode = code
		f.registrations[id] = r
	}
	return r, nil
}

func (f fakeRegistrations) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.registrations[id]
	if !ok {
		return ErrRegistrationNotFound
	}
	delete(f.registrations, id)
	delete(f.membership, [2]uint{r.EventID, id})
	return nil
}

func (f fakeRegistrations) AppendCheckIn(_ context.Context, registrationID uint, checkIn domain.CheckpointCheckIn) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.registrations[registrationID]
	if !ok {
		return false, ErrRegistrationNotFound
	}
	if r.HasCheckedIn(checkIn.Checkpoint) {
		return false, ErrCheckInExists
	}
	r.CheckpointCheckIns = append(r.CheckpointCheckIns, checkIn)
	first := r.Status == domain.RegistrationApproved
	if first {
		r.Status = domain.RegistrationCheckedIn
	}
	f.registrations[registrationID] = r
	return first, nil
}

type fakeScans struct{ *memStore }

func (f fakeScans) Append(_ context.Context, attempt domain.ScanAttempt) (domain.ScanAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.scans = append(f.scans, attempt)
	return attempt, nil
}

func (f fakeScans) ExportRows(_ context.Context, eventID uint, outcome domain.ScanOutcome) ([]domain.ScanExportRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var rows []domain.ScanExportRow
	for _, s := range f.scans {
		if s.EventID != eventID || (outcome != "" && s.Outcome != outcome) {
			continue
		}
		row := domain.ScanExportRow{ScanAttempt: s, VolunteerName: f.users[s.VolunteerID].Name}
		if s.RegistrationID != nil {
			participant := f.users[f.registrations[*s.RegistrationID].UserID]
			row.ParticipantName, row.ParticipantEmail = participant.Name, participant.Email
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type fakeTeams struct{ *memStore }

func (f fakeTeams) Create(_ context.Context, team domain.Team) (domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, t := range f.teams {
		if t.EventID == team.EventID && t.Name == team.Name {
			return domain.Team{}, ErrTeamNameExists
		}
	}
	team.ID = f.id()
	team.CreatedAt = f.tick()
	f.teams[team.ID] = team
	return team, nil
}

func (f fakeTeams) FindByID(_ context.Context, id uint) (domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.teams[id]
	if !ok {
		return domain.Team{}, ErrTeamNotFound
	}
	t.Members = append([]domain.TeamMember(nil), t.Members...)
	return t, nil
}

func (f fakeTeams) FindByEventID(_ context.Context, eventID uint) ([]domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var teams []domain.Team
	for _, t := range f.teams {
		if t.EventID == eventID {
			teams = append(teams, t)
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

func (f fakeTeams) AddMember(_ context.Context, team domain.Team, member domain.TeamMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := [2]uint{team.EventID, member.RegistrationID}
	if _, ok := f.membership[key]; ok {
		return ErrAlreadyOnTeam
	}
	f.membership[key] = team.ID
	t := f.teams[team.ID]
	t.Members = append(t.Members, member)
	f.teams[team.ID] = t
	return nil
}

func (f fakeTeams) TeamOf(ctx context.Context, eventID, registrationID uint) (domain.Team, error) {
	f.mu.Lock()
	teamID, ok := f.membership[[2]uint{eventID, registrationID}]
	f.mu.Unlock()
	if !ok {
		return domain.Team{}, ErrMembershipNotFound
	}
	return f.FindByID(ctx, teamID)
}

type fakeScores struct{ *memStore }

func (f fakeScores) CreateRound(_ context.Context, round domain.ScoringRound) (domain.ScoringRound, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	round.ID = f.id()
	round.CreatedAt = f.tick()
	f.rounds[round.ID] = round
	return round, nil
}

func (f fakeScores) FindRoundByID(_ context.Context, id uint) (domain.ScoringRound, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.rounds[id]
	if !ok {
		return domain.ScoringRound{}, ErrRoundNotFound
	}
	return r, nil
}

func (f fakeScores) RoundsByEventID(_ context.Context, eventID uint) ([]domain.ScoringRound, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var rounds []domain.ScoringRound
	for _, r := range f.rounds {
		if r.EventID == eventID {
			rounds = append(rounds, r)
		}
	}
	sort.Slice(rounds, func(i, j int) bool {
		if rounds[i].Position != rounds[j].Position {
			return rounds[i].Position < rounds[j].Position
		}
		return rounds[i].ID < rounds[j].ID
	})
	return rounds, nil
}

func (f fakeScores) Upsert(_ context.Context, score domain.Score) (domain.Score, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.scores[[2]uint{score.TeamID, score.ScoringRoundID}] = score
	return score, nil
}

func (f fakeScores) ScoresByEventID(_ context.Context, eventID uint) ([]domain.Score, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var scores []domain.Score
	for key, s := range f.scores {
		if f.teams[key[0]].EventID == eventID {
			scores = append(scores, s)
		}
	}
	return scores, nil
}

type fakeUsers struct{ *memStore }

func (f fakeUsers) Create(_ context.Context, user domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == user.Email {
			return domain.User{}, ErrUserEmailExists
		}
	}
	user.ID = f.id()
	f.users[user.ID] = user
	return user, nil
}

func (f fakeUsers) FindByID(_ context.Context, id uint) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return u, nil
}

func (f fakeUsers) FindByEmail(_ context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, ErrUserNotFound
}

type recordingFeed struct {
	mu     sync.Mutex
	pushed []domain.ScanAttempt
}

func (f *recordingFeed) Push(_ context.Context, attempt domain.ScanAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pushed = append(f.pushed, attempt)
	return nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) PublishJSON(_ context.Context, routingKey string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.keys = append(p.keys, routingKey)
	return nil
}

var testQRKey = []byte("0123456789abcdef0123456789abcdef")

// fixture wires every service against one memStore.
type fixture struct {
	store         *memStore
	tokens        *TokenService
	events        *EventService
	checkpoints   *CheckpointRegistry
	registrations *RegistrationService
	checkin       *CheckinEngine
	teams         *TeamService
	scoring       *ScoringService
	export        *ExportService
	feed          *recordingFeed
	pub           *recordingPublisher
}

func newFixture() *fixture {
	store := newMemStore()
	tokens, err := NewTokenService(testQRKey, fakeRegistrations{store})
	if err != nil {
		panic(err)
	}

	feed := &recordingFeed{}
	pub := &recordingPublisher{}

	return &fixture{
		store:         store,
		tokens:        tokens,
		events:        NewEventService(fakeEvents{store}),
		checkpoints:   NewCheckpointRegistry(fakeEvents{store}),
		registrations: NewRegistrationService(fakeRegistrations{store}, fakeEvents{store}, tokens, pub),
		checkin:       NewCheckinEngine(tokens, fakeEvents{store}, fakeRegistrations{store}, fakeScans{store}, feed, pub),
		teams:         NewTeamService(fakeTeams{store}, fakeEvents{store}, tokens, fakeRegistrations{store}, pub),
		scoring:       NewScoringService(fakeScores{store}, fakeTeams{store}, fakeEvents{store}, pub),
		export:        NewExportService(fakeScans{store}, fakeEvents{store}),
		feed:          feed,
		pub:           pub,
	}
}

func (f *fixture) user(name, email string, role domain.Role) domain.User {
	u, err := fakeUsers{f.store}.Create(context.Background(), domain.User{Name: name, Email: email, Role: role})
	if err != nil {
		panic(err)
	}
	return u
}

func (f *fixture) event(enforceOrder bool, checkpoints ...string) domain.Event {
	event := domain.Event{Name: "Hack Night", RegistrationOpen: true, EnforceOrder: enforceOrder}
	for _, name := range checkpoints {
		event.Checkpoints = append(event.Checkpoints, domain.Checkpoint{Name: name})
	}
	created, err := f.events.CreateEvent(context.Background(), event)
	if err != nil {
		panic(err)
	}
	return created
}

// approvedToken registers a fresh participant and returns the approved registration.
func (f *fixture) approvedToken(eventID uint, name string) domain.Registration {
	ctx := context.Background()
	u := f.user(name, name+"@example.com", domain.RoleParticipant)
	reg, err := f.registrations.Register(ctx, eventID, u.ID)
	if err != nil {
		panic(err)
	}
	reg, err = f.registrations.Review(ctx, reg.ID, true, 0)
	if err != nil {
		panic(err)
	}
	return reg
}
