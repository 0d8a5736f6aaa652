package domain

import "time"

type Event struct {
	ID               uint         `json:"id"`
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	RegistrationOpen bool         `json:"registration_open"`
	EnforceOrder     bool         `json:"enforce_order"`
	OrganizerID      uint         `json:"organizer_id"`
	Checkpoints      []Checkpoint `json:"checkpoints"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// MaxCheckpoints bounds an event's sequence so every position fits the two-digit
// export prefix, leaving 99 for checkpoints no longer in the sequence.
const MaxCheckpoints = 99

// Checkpoint is one named stage of an event. Position is the 0-based index in the
// event's checkpoint sequence and never changes once assigned.
type Checkpoint struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
	Unlocked bool   `json:"unlocked"`
}

// CheckpointNames returns the ordered checkpoint sequence.
func (e Event) CheckpointNames() []string {
	names := make([]string, len(e.Checkpoints))
	for i, cp := range e.Checkpoints {
		names[i] = cp.Name
	}
	return names
}

// UnlockedCheckpoints returns the unlocked subset, in sequence order.
func (e Event) UnlockedCheckpoints() []string {
	var names []string
	for _, cp := range e.Checkpoints {
		if cp.Unlocked {
			names = append(names, cp.Name)
		}
	}
	return names
}
