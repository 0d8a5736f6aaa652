package domain

import "time"

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationApproved  RegistrationStatus = "approved"
	RegistrationRejected  RegistrationStatus = "rejected"
	RegistrationCheckedIn RegistrationStatus = "checked-in"
)

type Registration struct {
	ID                 uint                `json:"id"`
	EventID            uint                `json:"event_id"`
	UserID             uint                `json:"user_id"`
	Status             RegistrationStatus  `json:"status"`
	QRCode             string              `json:"-"`
	CheckpointCheckIns []CheckpointCheckIn `json:"checkpoint_check_ins"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

type CheckpointCheckIn struct {
	Checkpoint string    `json:"checkpoint"`
	Timestamp  time.Time `json:"timestamp"`
	RecordedBy uint      `json:"recorded_by"`
}

// Admitted reports whether the registration's identity token may be honoured.
func (r Registration) Admitted() bool {
	return r.Status == RegistrationApproved || r.Status == RegistrationCheckedIn
}

func (r Registration) HasCheckedIn(checkpoint string) bool {
	for _, c := range r.CheckpointCheckIns {
		if c.Checkpoint == checkpoint {
			return true
		}
	}
	return false
}
