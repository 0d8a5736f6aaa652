package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/eventpass-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/eventpass-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/eventpass-api/internal/domain"
	"github.com/vietanh2810/eventpass-api/internal/service"
)

type CheckinService interface {
	CheckIn(ctx context.Context, req service.CheckInRequest) (domain.ScanAttempt, error)
	History(ctx context.Context, eventID, registrationID uint) ([]domain.CheckpointCheckIn, error)
}

type CheckinHandler struct {
	svc CheckinService
}

func NewCheckinHandler(svc CheckinService) *CheckinHandler {
	return &CheckinHandler{
		svc: svc,
	}
}

// HandleCheckIn godoc
// @Summary      Scan a participant at a checkpoint
// @Description  Every scan is answered with its recorded attempt. A rejected scan is still a 200; the verdict is in the outcome field.
// @Tags         checkins
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                     true  "Event ID"
// @Param        request  body      request.CheckInRequest  true  "request body"
// @Success      200      {object}  domain.ScanAttempt
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/checkins [post]
// @Security     BearerAuth
func (h *CheckinHandler) HandleCheckIn(ctx *gin.Context) {
	eventID, err := parseID(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalidID("eventID", err))
		return
	}

	var req request.CheckInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	attempt, err := h.svc.CheckIn(ctx.Request.Context(), service.CheckInRequest{
		EventID:     eventID,
		Code:        req.Code,
		Checkpoint:  req.Checkpoint,
		VolunteerID: sessionUserID(ctx),
	})
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("v1.HandleCheckIn -> h.svc.CheckIn -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, attempt)
}

// HandleHistory godoc
// @Summary      List a registration's check-ins
// @Tags         checkins
// @Produce      json
// @Param        eventID         path      int  true  "Event ID"
// @Param        registrationID  path      int  true  "Registration ID"
// @Success      200             {array}   domain.CheckpointCheckIn
// @Failure      404             {object}  response.Err
// @Router       /events/{eventID}/registrations/{registrationID}/checkins [get]
// @Security     BearerAuth
func (h *CheckinHandler) HandleHistory(ctx *gin.Context) {
	eventID, err := parseID(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalidID("eventID", err))
		return
	}
	registrationID, err := parseID(ctx, "registrationID")
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalidID("registrationID", err))
		return
	}

	history, err := h.svc.History(ctx.Request.Context(), eventID, registrationID)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("v1.HandleHistory -> h.svc.History -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, history)
}
