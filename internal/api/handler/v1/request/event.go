package request

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/vietanh2810/eventpass-api/internal/domain"
)

var (
	errBlankCheckpoint    = errors.New("checkpoint names must be 1 to 100 characters")
	errTooManyCheckpoints = fmt.Errorf("an event has at most %d checkpoints", domain.MaxCheckpoints)
)

type CreateEventRequest struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Checkpoints      []string `json:"checkpoints"`
	RegistrationOpen bool     `json:"registration_open"`
	// EnforceOrder falls back to the server default when omitted.
	EnforceOrder *bool `json:"enforce_order,omitempty"`
}

func (req *CreateEventRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
	)
	if err != nil {
		return err
	}

	if len(req.Checkpoints) > domain.MaxCheckpoints {
		return errTooManyCheckpoints
	}
	for _, name := range req.Checkpoints {
		if strings.TrimSpace(name) == "" || len(name) > 100 {
			return errBlankCheckpoint
		}
	}

	return nil
}

type AddCheckpointRequest struct {
	Name string `json:"name"`
}

func (req *AddCheckpointRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
	)
}

type ReviewRegistrationRequest struct {
	Approve *bool `json:"approve"`
}

func (req *ReviewRegistrationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Approve, validation.NotNil),
	)
}
