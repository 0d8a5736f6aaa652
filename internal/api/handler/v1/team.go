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

type TeamService interface {
	CreateTeam(ctx context.Context, eventID uint, name string) (domain.Team, error)
	GetTeam(ctx context.Context, id uint) (domain.Team, error)
	ListTeams(ctx context.Context, eventID uint) ([]domain.Team, error)
	AddMember(ctx context.Context, teamID uint, code string, addedBy uint) (domain.AddMemberResult, error)
}

type TeamHandler struct {
	svc TeamService
}

func NewTeamHandler(svc TeamService) *TeamHandler {
	return &TeamHandler{
		svc: svc,
	}
}

// HandleCreateTeam godoc
// @Summary      Create a team
// @Tags         teams
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                        true  "Event ID"
// @Param        request  body      request.CreateTeamRequest  true  "request body"
// @Success      201      {object}  domain.Team
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /events/{eventID}/teams [post]
// @Security     BearerAuth
func (h *TeamHandler) HandleCreateTeam(ctx *gin.Context) {
	eventID, err := parseID(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalidID("eventID", err))
		return
	}

	var req request.CreateTeamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	team, err := h.svc.CreateTeam(ctx.Request.Context(), eventID, req.Name)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("v1.HandleCreateTeam -> h.svc.CreateTeam -> %w", err)))
		return
	}

	ctx.JSON(http.StatusCreated, team)
}

// HandleListTeams godoc
// @Summary      List an event's teams
// @Tags         teams
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {array}   domain.Team
// @Failure      404      {object}  response.Err
// @Router       /events/{eventID}/teams [get]
// @Security     BearerAuth
func (h *TeamHandler) HandleListTeams(ctx *gin.Context) {
	eventID, err := parseID(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalidID("eventID", err))
		return
	}

	teams, err := h.svc.ListTeams(ctx.Request.Context(), eventID)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("v1.HandleListTeams -> h.svc.ListTeams -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, teams)
}

// HandleGetTeam godoc
// @Summary      Get a team with its members
// @Tags         teams
// @Produce      json
// @Param        teamID  path      int  true  "Team ID"
// @Success      200     {object}  domain.Team
// @Failure      404     {object}  response.Err
// @Router       /teams/{teamID} [get]
// @Security     BearerAuth
func (h *TeamHandler) HandleGetTeam(ctx *gin.Context) {
	teamID, err := parseID(ctx, "teamID")
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalidID("teamID", err))
		return
	}

	team, err := h.svc.GetTeam(ctx.Request.Context(), teamID)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("v1.HandleGetTeam -> h.svc.GetTeam -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, team)
}

// HandleAddMember godoc
// @Summary      Add a participant to a team by scanning their code
// @Description  The scan verdict is in the outcome field. A participant belongs to at most one team per event.
// @Tags         teams
// @Accept       json
// @Produce      json
// @Param        teamID   path      int                       true  "Team ID"
// @Param        request  body      request.AddMemberRequest  true  "request body"
// @Success      200      {object}  domain.AddMemberResult
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /teams/{teamID}/members [post]
// @Security     BearerAuth
func (h *TeamHandler) HandleAddMember(ctx *gin.Context) {
	teamID, err := parseID(ctx, "teamID")
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalidID("teamID", err))
		return
	}

	var req request.AddMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.AddMember(ctx.Request.Context(), teamID, req.Code, sessionUserID(ctx))
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("v1.HandleAddMember -> h.svc.AddMember -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, result)
}
