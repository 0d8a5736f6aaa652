package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
)

var (
	errNegativeScore  = errors.New("must not be negative")
	errScorePrecision = errors.New("must have at most 2 decimal places")
	errScoreTooLarge  = errors.New("must be less than 10000000000")
)

var maxScore = decimal.New(1, 10)

type CreateTeamRequest struct {
	Name string `json:"name"`
}

func (req *CreateTeamRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
	)
}

type AddMemberRequest struct {
	Code string `json:"code"`
}

func (req *AddMemberRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Code, validation.Required, validation.Length(1, 4096)),
	)
}

type CreateRoundRequest struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

func (req *CreateRoundRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Position, validation.Min(0)),
	)
}

type SetScoreRequest struct {
	Value decimal.Decimal `json:"value" swaggertype:"number"`
}

func (req *SetScoreRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Value, validation.By(storableScore)),
	)
}

// storableScore matches the numeric(12,2) score column.
func storableScore(value interface{}) error {
	v, ok := value.(decimal.Decimal)
	if !ok {
		return nil
	}

	switch {
	case v.IsNegative():
		return errNegativeScore
	case !v.Equal(v.Round(2)):
		return errScorePrecision
	case v.GreaterThanOrEqual(maxScore):
		return errScoreTooLarge
	}
	return nil
}
