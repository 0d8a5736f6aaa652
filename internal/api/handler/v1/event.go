package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/eventpass-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/eventpass-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/eventpass-api/internal/domain"
)

type EventService interface {
	CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error)
	GetEvent(ctx context.Context, id uint) (domain.Event, error)
}

type CheckpointRegistry interface {
	Add(ctx context.Context, eventID uint, name string) (domain.Checkpoint, error)
	Unlock(ctx context.Context, eventID uint, name string) error
	Lock(ctx context.Context, eventID uint, name string) error
	List(ctx context.Context, eventID uint) ([]domain.Checkpoint, error)
}

type EventHandler struct {
	svc                 EventService
	checkpoints         CheckpointRegistry
	enforceOrderDefault bool
}

func NewEventHandler(svc EventService, checkpoints CheckpointRegistry, enforceOrderDefault bool) *EventHandler {
	return &EventHandler{
		svc:                 svc,
		checkpoints:         checkpoints,
		enforceOrderDefault: enforceOrderDefault,
	}
}

// HandleCreateEvent godoc
// @Summary      Create an event
// @Description  Creates an event with its ordered checkpoint sequence. Every checkpoint starts locked.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateEventRequest  true  "request body"
// @Success      201      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events [post]
// @Security     BearerAuth
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	var req request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	enforceOrder := h.enforceOrderDefault
	if req.EnforceOrder != nil {
		enforceOrder = *req.EnforceOrder
	}

	event := domain.Event{
		Name:             req.Name,
		Description:      req.Description,
		RegistrationOpen: req.RegistrationOpen,
		EnforceOrder:     enforceOrder,
		OrganizerID:      sessionUserID(ctx),
	}
	for _, name := range req.Checkpoints {
		event.Checkpoints = append(event.Checkpoints, domain.Checkpoint{Name: name})
	}

	created, err := h.svc.CreateEvent(ctx.Request.Context(), event)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("v1.HandleCreateEvent -> h.svc.CreateEvent -> %w", err)))
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleGetEvent godoc
// @Summary      Get an event
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [get]
// @Security     BearerAuth
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	eventID, err := parseID(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalidID("eventID", err))
		return
	}

	event, err := h.svc.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("v1.HandleGetEvent -> h.svc.GetEvent -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleListCheckpoints godoc
// @Summary      List an event's checkpoints in sequence order
// @Tags         checkpoints
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {array}   domain.Checkpoint
// @Failure      404      {object}  response.Err
// @Router       /events/{eventID}/checkpoints [get]
// @Security     BearerAuth
func (h *EventHandler) HandleListCheckpoints(ctx *gin.Context) {
	eventID, err := parseID(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalidID("eventID", err))
		return
	}

	checkpoints, err := h.checkpoints.List(ctx.Request.Context(), eventID)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("v1.HandleListCheckpoints -> h.checkpoints.List -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, checkpoints)
}

// HandleAddCheckpoint godoc
// @Summary      Append a checkpoint
// @Description  Appends a locked checkpoint to the end of the sequence. Existing positions never change.
// @Tags         checkpoints
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                           true  "Event ID"
// @Param        request  body      request.AddCheckpointRequest  true  "request body"
// @Success      201      {object}  domain.Checkpoint
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /events/{eventID}/checkpoints [post]
// @Security     BearerAuth
func (h *EventHandler) HandleAddCheckpoint(ctx *gin.Context) {
	eventID, err := parseID(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalidID("eventID", err))
		return
	}

	var req request.AddCheckpointRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	checkpoint, err := h.checkpoints.Add(ctx.Request.Context(), eventID, req.Name)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("v1.HandleAddCheckpoint -> h.checkpoints.Add -> %w", err)))
		return
	}

	ctx.JSON(http.StatusCreated, checkpoint)
}

// HandleUnlockCheckpoint godoc
// @Summary      Unlock a checkpoint
// @Tags         checkpoints
// @Param        eventID  path  int     true  "Event ID"
// @Param        name     path  string  true  "Checkpoint name"
// @Success      204
// @Failure      404  {object}  response.Err
// @Failure      422  {object}  response.Err
// @Router       /events/{eventID}/checkpoints/{name}/unlock [post]
// @Security     BearerAuth
func (h *EventHandler) HandleUnlockCheckpoint(ctx *gin.Context) {
	h.setCheckpointState(ctx, h.checkpoints.Unlock)
}

// HandleLockCheckpoint godoc
// @Summary      Lock a checkpoint
// @Description  Stops accepting scans at the checkpoint. Recorded check-ins are kept.
// @Tags         checkpoints
// @Param        eventID  path  int     true  "Event ID"
// @Param        name     path  string  true  "Checkpoint name"
// @Success      204
// @Failure      404  {object}  response.Err
// @Failure      422  {object}  response.Err
// @Router       /events/{eventID}/checkpoints/{name}/lock [post]
// @Security     BearerAuth
func (h *EventHandler) HandleLockCheckpoint(ctx *gin.Context) {
	h.setCheckpointState(ctx, h.checkpoints.Lock)
}

func (h *EventHandler) setCheckpointState(ctx *gin.Context, apply func(context.Context, uint, string) error) {
	eventID, err := parseID(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalidID("eventID", err))
		return
	}

	if err := apply(ctx.Request.Context(), eventID, ctx.Param("name")); err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("v1.setCheckpointState -> %w", err)))
		return
	}

	ctx.Status(http.StatusNoContent)
}
