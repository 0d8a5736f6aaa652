package domain

import "time"

type ScanOutcome string

const (
	ScanSuccess          ScanOutcome = "success"
	ScanDuplicate        ScanOutcome = "duplicate"
	ScanCheckpointLocked ScanOutcome = "checkpoint-locked"
	ScanOutOfOrder       ScanOutcome = "out-of-order"
	ScanInvalidToken     ScanOutcome = "invalid-token"
	ScanNotFound         ScanOutcome = "not-found"
)

func (o ScanOutcome) Valid() bool {
	switch o {
	case ScanSuccess, ScanDuplicate, ScanCheckpointLocked, ScanOutOfOrder, ScanInvalidToken, ScanNotFound:
		return true
	}
	return false
}

// ScanAttempt is the append-only audit record of one scan.
type ScanAttempt struct {
	ID             string      `json:"id"`
	EventID        uint        `json:"event_id"`
	VolunteerID    uint        `json:"volunteer_id"`
	RegistrationID *uint       `json:"registration_id,omitempty"`
	Code           string      `json:"-"`
	Checkpoint     string      `json:"checkpoint"`
	Outcome        ScanOutcome `json:"outcome"`
	Detail         string      `json:"detail,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
}

// ScanExportRow is a scan attempt joined with the names the CSV export needs.
type ScanExportRow struct {
	ScanAttempt
	ParticipantName  string
	ParticipantEmail string
	VolunteerName    string
}
