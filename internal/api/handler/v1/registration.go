package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/eventpass-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/eventpass-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/eventpass-api/internal/api/middleware"
	"github.com/vietanh2810/eventpass-api/internal/domain"
)

var errNotRegistrationOwner = errors.New("only the participant or an organizer may view this token")

type RegistrationService interface {
	Register(ctx context.Context, eventID, userID uint) (domain.Registration, error)
	GetRegistration(ctx context.Context, id uint) (domain.Registration, error)
	Review(ctx context.Context, id uint, approve bool, reviewerID uint) (domain.Registration, error)
	Token(ctx context.Context, id uint) (domain.Registration, error)
	Delete(ctx context.Context, id uint) error
}

type RegistrationHandler struct {
	svc RegistrationService
}

func NewRegistrationHandler(svc RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{
		svc: svc,
	}
}

type TokenResponse struct {
	RegistrationID uint   `json:"registration_id"`
	EventID        uint   `json:"event_id"`
	Token          string `json:"token"`
}

// HandleRegister godoc
// @Summary      Register the caller for an event
// @Tags         registrations
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      201      {object}  domain.Registration
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Router       /events/{eventID}/registrations [post]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleRegister(ctx *gin.Context) {
	eventID, err := parseID(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalidID("eventID", err))
		return
	}

	registration, err := h.svc.Register(ctx.Request.Context(), eventID, sessionUserID(ctx))
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("v1.HandleRegister -> h.svc.Register -> %w", err)))
		return
	}

	ctx.JSON(http.StatusCreated, registration)
}

// HandleReviewRegistration godoc
// @Summary      Approve or reject a registration
// @Description  Approval issues the participant's identity token. Rejection revokes it.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        registrationID  path      int                                true  "Registration ID"
// @Param        request         body      request.ReviewRegistrationRequest  true  "request body"
// @Success      200             {object}  domain.Registration
// @Failure      400             {object}  response.Err
// @Failure      404             {object}  response.Err
// @Failure      409             {object}  response.Err
// @Failure      422             {object}  response.Err
// @Router       /registrations/{registrationID} [patch]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleReviewRegistration(ctx *gin.Context) {
	registrationID, err := parseID(ctx, "registrationID")
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalidID("registrationID", err))
		return
	}

	var req request.ReviewRegistrationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	registration, err := h.svc.Review(ctx.Request.Context(), registrationID, *req.Approve, sessionUserID(ctx))
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("v1.HandleReviewRegistration -> h.svc.Review -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, registration)
}

// HandleGetToken godoc
// @Summary      Get a registration's identity token
// @Description  Returns the opaque token to render as a QR code. Only approved registrations have one.
// @Tags         registrations
// @Produce      json
// @Param        registrationID  path      int  true  "Registration ID"
// @Success      200             {object}  TokenResponse
// @Failure      403             {object}  response.Err
// @Failure      404             {object}  response.Err
// @Failure      422             {object}  response.Err
// @Router       /registrations/{registrationID}/token [get]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleGetToken(ctx *gin.Context) {
	registrationID, err := parseID(ctx, "registrationID")
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalidID("registrationID", err))
		return
	}

	registration, err := h.svc.GetRegistration(ctx.Request.Context(), registrationID)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("v1.HandleGetToken -> h.svc.GetRegistration -> %w", err)))
		return
	}

	role, _ := middleware.RoleFromContext(ctx)
	if registration.UserID != sessionUserID(ctx) && role != domain.RoleOrganizer && role != domain.RoleAdmin {
		response.RenderErr(ctx, response.ErrPermissionDenied(errNotRegistrationOwner))
		return
	}

	registration, err = h.svc.Token(ctx.Request.Context(), registrationID)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("v1.HandleGetToken -> h.svc.Token -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, TokenResponse{
		RegistrationID: registration.ID,
		EventID:        registration.EventID,
		Token:          registration.QRCode,
	})
}

// HandleDeleteRegistration godoc
// @Summary      Delete a registration
// @Description  Removes the registration with its check-ins and team membership. Its token stops verifying.
// @Tags         registrations
// @Param        registrationID  path  int  true  "Registration ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Router       /registrations/{registrationID} [delete]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleDeleteRegistration(ctx *gin.Context) {
	registrationID, err := parseID(ctx, "registrationID")
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalidID("registrationID", err))
		return
	}

	if err := h.svc.Delete(ctx.Request.Context(), registrationID); err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("v1.HandleDeleteRegistration -> h.svc.Delete -> %w", err)))
		return
	}

	ctx.Status(http.StatusNoContent)
}
