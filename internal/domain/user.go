package domain

import "time"

type Role string

const (
	RoleApplicant   Role = "applicant"
	RoleParticipant Role = "participant"
	RoleVolunteer   Role = "volunteer"
	RoleOrganizer   Role = "organizer"
	RoleAdmin       Role = "admin"
	RoleMentor      Role = "mentor"
)

func (r Role) Valid() bool {
	switch r {
	case RoleApplicant, RoleParticipant, RoleVolunteer, RoleOrganizer, RoleAdmin, RoleMentor:
		return true
	}
	return false
}

type User struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
