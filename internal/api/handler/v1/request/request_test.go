package request

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSignupRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     SignupRequest
		wantErr bool
	}{
		{
			name: "valid",
			req:  SignupRequest{Email: "ada@example.com", Password: "Secret#123", ConfirmPassword: "Secret#123", Name: "Ada"},
		},
		{
			name:    "no symbol",
			req:     SignupRequest{Email: "ada@example.com", Password: "Secret123", ConfirmPassword: "Secret123", Name: "Ada"},
			wantErr: true,
		},
		{
			name:    "mismatch",
			req:     SignupRequest{Email: "ada@example.com", Password: "Secret#123", ConfirmPassword: "Secret#124", Name: "Ada"},
			wantErr: true,
		},
		{
			name:    "staff role",
			req:     SignupRequest{Email: "ada@example.com", Password: "Secret#123", ConfirmPassword: "Secret#123", Name: "Ada", Role: "admin"},
			wantErr: true,
		},
		{
			name:    "bad email",
			req:     SignupRequest{Email: "ada", Password: "Secret#123", ConfirmPassword: "Secret#123", Name: "Ada"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateEventRequest_Validate(t *testing.T) {
	assert.NoError(t, (&CreateEventRequest{Name: "Hack", Checkpoints: []string{"Registration", "Lunch"}}).Validate())
	assert.Error(t, (&CreateEventRequest{Name: "Hack", Checkpoints: []string{"Registration", ""}}).Validate())
	assert.Error(t, (&CreateEventRequest{}).Validate())

	names := make([]string, 100)
	for i := range names {
		names[i] = fmt.Sprintf("cp-%03d", i)
	}
	assert.Error(t, (&CreateEventRequest{Name: "Hack", Checkpoints: names}).Validate())
	assert.NoError(t, (&CreateEventRequest{Name: "Hack", Checkpoints: names[:99]}).Validate())
}

func TestSetScoreRequest_Validate(t *testing.T) {
	assert.NoError(t, (&SetScoreRequest{Value: decimal.RequireFromString("12.5")}).Validate())
	assert.NoError(t, (&SetScoreRequest{Value: decimal.RequireFromString("1.50")}).Validate())
	assert.NoError(t, (&SetScoreRequest{Value: decimal.RequireFromString("9999999999.99")}).Validate())
	assert.Error(t, (&SetScoreRequest{Value: decimal.NewFromInt(-1)}).Validate())
	assert.Error(t, (&SetScoreRequest{Value: decimal.RequireFromString("1.005")}).Validate())
	assert.Error(t, (&SetScoreRequest{Value: decimal.RequireFromString("10000000000")}).Validate())
	assert.Error(t, (&SetScoreRequest{Value: decimal.RequireFromString("123456789012345")}).Validate())
}

func TestCheckInRequest_Validate(t *testing.T) {
	assert.NoError(t, (&CheckInRequest{Code: "", Checkpoint: "Lunch"}).Validate())
	assert.NoError(t, (&CheckInRequest{Code: strings.Repeat("x", 5000), Checkpoint: "Lunch"}).Validate())
	assert.Error(t, (&CheckInRequest{Code: "abc"}).Validate())
}

func TestReviewRegistrationRequest_Validate(t *testing.T) {
	yes := true
	assert.NoError(t, (&ReviewRegistrationRequest{Approve: &yes}).Validate())
	assert.Error(t, (&ReviewRegistrationRequest{}).Validate())
}
