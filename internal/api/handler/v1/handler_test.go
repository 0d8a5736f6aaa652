package v1

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/eventpass-api/internal/api/middleware"
	"github.com/vietanh2810/eventpass-api/internal/domain"
	"github.com/vietanh2810/eventpass-api/internal/feed"
	"github.com/vietanh2810/eventpass-api/internal/service"
)

type stubCheckin struct {
	got     service.CheckInRequest
	attempt domain.ScanAttempt
}

func (s *stubCheckin) CheckIn(_ context.Context, req service.CheckInRequest) (domain.ScanAttempt, error) {
	s.got = req
	return s.attempt, nil
}

func (s *stubCheckin) History(context.Context, uint, uint) ([]domain.CheckpointCheckIn, error) {
	return nil, service.ErrRegistrationElsewhere
}

type stubRegistrations struct {
	registration domain.Registration
}

func (s *stubRegistrations) Register(context.Context, uint, uint) (domain.Registration, error) {
	return domain.Registration{}, service.ErrRegistrationClosed
}

func (s *stubRegistrations) GetRegistration(_ context.Context, id uint) (domain.Registration, error) {
	if id != s.registration.ID {
		return domain.Registration{}, service.ErrRegistrationNotFound
	}
	return s.registration, nil
}

func (s *stubRegistrations) Review(context.Context, uint, bool, uint) (domain.Registration, error) {
	return s.registration, nil
}

func (s *stubRegistrations) Token(context.Context, uint) (domain.Registration, error) {
	return s.registration, nil
}

func (s *stubRegistrations) Delete(context.Context, uint) error { return nil }

type stubExport struct{}

func (stubExport) ExportScans(_ context.Context, w io.Writer, _ uint, outcome domain.ScanOutcome) error {
	if outcome != "" && !outcome.Valid() {
		return service.ErrInvalidOutcomeFilter
	}
	_, err := io.WriteString(w, "\"checkpoint\"\r\n\"01-Lunch\"\r\n")
	return err
}

// withSession stands in for the JWT middleware.
func withSession(userID uint, role domain.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(middleware.ContextKeyUserID, userID)
		ctx.Set(middleware.ContextKeyRole, role)
		ctx.Next()
	}
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCheckinHandler_RejectedScanIsStillOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &stubCheckin{attempt: domain.ScanAttempt{ID: "a1", Outcome: domain.ScanCheckpointLocked, Checkpoint: "Lunch"}}
	h := NewCheckinHandler(svc)

	r := gin.New()
	r.POST("/events/:eventID/checkins", withSession(9, domain.RoleVolunteer), h.HandleCheckIn)

	w := serve(r, http.MethodPost, "/events/3/checkins", `{"code":"abc","checkpoint":"Lunch"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got domain.ScanAttempt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, domain.ScanCheckpointLocked, got.Outcome)
	assert.Equal(t, service.CheckInRequest{EventID: 3, Code: "abc", Checkpoint: "Lunch", VolunteerID: 9}, svc.got)
}

func TestCheckinHandler_BadInput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewCheckinHandler(&stubCheckin{})

	r := gin.New()
	r.POST("/events/:eventID/checkins", withSession(9, domain.RoleVolunteer), h.HandleCheckIn)
	r.GET("/events/:eventID/registrations/:registrationID/checkins", h.HandleHistory)

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/events/3/checkins", `{"code":"abc"}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/events/x/checkins", `{"code":"a","checkpoint":"b"}`).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/events/3/registrations/4/checkins", "").Code)
}

func TestCheckinHandler_UnreadableCodesReachEngine(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		code string
	}{
		{name: "empty", code: ""},
		{name: "oversized", code: strings.Repeat("x", 5000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubCheckin{attempt: domain.ScanAttempt{ID: "a2", Outcome: domain.ScanInvalidToken, Checkpoint: "Lunch"}}
			h := NewCheckinHandler(svc)

			r := gin.New()
			r.POST("/events/:eventID/checkins", withSession(9, domain.RoleVolunteer), h.HandleCheckIn)

			body, err := json.Marshal(map[string]string{"code": tt.code, "checkpoint": "Lunch"})
			require.NoError(t, err)

			w := serve(r, http.MethodPost, "/events/3/checkins", string(body))
			require.Equal(t, http.StatusOK, w.Code)

			var got domain.ScanAttempt
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, domain.ScanInvalidToken, got.Outcome)
			assert.Equal(t, tt.code, svc.got.Code)
			assert.Equal(t, uint(3), svc.got.EventID)
		})
	}
}

func TestRegistrationHandler_TokenVisibility(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &stubRegistrations{registration: domain.Registration{
		ID:      5,
		EventID: 2,
		UserID:  11,
		Status:  domain.RegistrationApproved,
		QRCode:  "qr-token",
	}}
	h := NewRegistrationHandler(svc)

	tests := []struct {
		name   string
		userID uint
		role   domain.Role
		want   int
	}{
		{name: "owner", userID: 11, role: domain.RoleParticipant, want: http.StatusOK},
		{name: "organizer", userID: 1, role: domain.RoleOrganizer, want: http.StatusOK},
		{name: "other participant", userID: 12, role: domain.RoleParticipant, want: http.StatusForbidden},
		{name: "volunteer", userID: 13, role: domain.RoleVolunteer, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/registrations/:registrationID/token", withSession(tt.userID, tt.role), h.HandleGetToken)

			w := serve(r, http.MethodGet, "/registrations/5/token", "")
			require.Equal(t, tt.want, w.Code)
			if tt.want != http.StatusOK {
				assert.NotContains(t, w.Body.String(), "qr-token")
				return
			}

			var got TokenResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, TokenResponse{RegistrationID: 5, EventID: 2, Token: "qr-token"}, got)
		})
	}
}

func TestRegistrationHandler_ErrorsByKind(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewRegistrationHandler(&stubRegistrations{registration: domain.Registration{ID: 5}})

	r := gin.New()
	r.POST("/events/:eventID/registrations", withSession(11, domain.RoleApplicant), h.HandleRegister)
	r.GET("/registrations/:registrationID/token", withSession(11, domain.RoleApplicant), h.HandleGetToken)
	r.PATCH("/registrations/:registrationID", withSession(1, domain.RoleOrganizer), h.HandleReviewRegistration)

	assert.Equal(t, http.StatusUnprocessableEntity, serve(r, http.MethodPost, "/events/2/registrations", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/registrations/6/token", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPatch, "/registrations/5", `{}`).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPatch, "/registrations/5", `{"approve":true}`).Code)
}

func TestExportHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewExportHandler(stubExport{})

	r := gin.New()
	r.GET("/events/:eventID/scans/export.csv", h.HandleExportScans)

	w := serve(r, http.MethodGet, "/events/4/scans/export.csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="event-4-scans.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "\"checkpoint\"\r\n\"01-Lunch\"\r\n", w.Body.String())

	w = serve(r, http.MethodGet, "/events/4/scans/export.csv?outcome=bogus", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}

func TestFeedHandler_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewFeedHandler(feed.Noop{}, []string{"*"})

	r := gin.New()
	r.GET("/events/:eventID/scans/recent", h.HandleRecentScans)
	r.GET("/events/:eventID/scans/live", h.HandleLiveScans)

	assert.Equal(t, http.StatusServiceUnavailable, serve(r, http.MethodGet, "/events/1/scans/recent", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/events/1/scans/recent?limit=0", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(r, http.MethodGet, "/events/1/scans/live", "").Code)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://ops.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://ops.example.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))
}
