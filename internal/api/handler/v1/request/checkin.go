package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// CheckInRequest leaves Code unchecked: an empty or garbled scan is still an
// attempt and goes to the engine to be recorded as invalid-token.
type CheckInRequest struct {
	Code       string `json:"code"`
	Checkpoint string `json:"checkpoint"`
}

func (req *CheckInRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Checkpoint, validation.Required, validation.Length(1, 100)),
	)
}
