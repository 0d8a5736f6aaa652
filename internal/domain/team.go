package domain

import "time"

type Team struct {
	ID        uint         `json:"id"`
	EventID   uint         `json:"event_id"`
	Name      string       `json:"name"`
	Members   []TeamMember `json:"members"`
	CreatedAt time.Time    `json:"created_at"`
}

type TeamMember struct {
	RegistrationID uint      `json:"registration_id"`
	AddedBy        uint      `json:"added_by"`
	JoinedAt       time.Time `json:"joined_at"`
}

type TeamScanOutcome string

const (
	TeamScanAccepted       TeamScanOutcome = "accepted"
	TeamScanAlreadyOnTeam  TeamScanOutcome = "already-on-team"
	TeamScanAlreadyScanned TeamScanOutcome = "already-scanned"
	TeamScanInvalidToken   TeamScanOutcome = "invalid-token"
	TeamScanNotFound       TeamScanOutcome = "not-found"
)

type AddMemberResult struct {
	Outcome        TeamScanOutcome `json:"outcome"`
	RegistrationID uint            `json:"registration_id,omitempty"`
	TeamName       string          `json:"team_name,omitempty"`
}
