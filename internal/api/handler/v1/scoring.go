package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/vietanh2810/eventpass-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/eventpass-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/eventpass-api/internal/domain"
)

type ScoringService interface {
	CreateRound(ctx context.Context, eventID uint, name string, position int) (domain.ScoringRound, error)
	Rounds(ctx context.Context, eventID uint) ([]domain.ScoringRound, error)
	SetScore(ctx context.Context, teamID, roundID uint, value decimal.Decimal, scorerID uint) (domain.Score, error)
	Leaderboard(ctx context.Context, eventID uint) ([]domain.LeaderboardEntry, error)
}

type ScoringHandler struct {
	svc ScoringService
}

func NewScoringHandler(svc ScoringService) *ScoringHandler {
	return &ScoringHandler{
		svc: svc,
	}
}

// HandleCreateRound godoc
// @Summary      Create a scoring round
// @Tags         scoring
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                         true  "Event ID"
// @Param        request  body      request.CreateRoundRequest  true  "request body"
// @Success      201      {object}  domain.ScoringRound
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /events/{eventID}/rounds [post]
// @Security     BearerAuth
func (h *ScoringHandler) HandleCreateRound(ctx *gin.Context) {
	eventID, err := parseID(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalidID("eventID", err))
		return
	}

	var req request.CreateRoundRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	round, err := h.svc.CreateRound(ctx.Request.Context(), eventID, req.Name, req.Position)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("v1.HandleCreateRound -> h.svc.CreateRound -> %w", err)))
		return
	}

	ctx.JSON(http.StatusCreated, round)
}

// HandleListRounds godoc
// @Summary      List an event's scoring rounds
// @Tags         scoring
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {array}   domain.ScoringRound
// @Failure      404      {object}  response.Err
// @Router       /events/{eventID}/rounds [get]
// @Security     BearerAuth
func (h *ScoringHandler) HandleListRounds(ctx *gin.Context) {
	eventID, err := parseID(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalidID("eventID", err))
		return
	}

	rounds, err := h.svc.Rounds(ctx.Request.Context(), eventID)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("v1.HandleListRounds -> h.svc.Rounds -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, rounds)
}

// HandleSetScore godoc
// @Summary      Set a team's score for a round
// @Description  Overwrites any previous value for the (team, round) pair.
// @Tags         scoring
// @Accept       json
// @Produce      json
// @Param        teamID   path      int                      true  "Team ID"
// @Param        roundID  path      int                      true  "Round ID"
// @Param        request  body      request.SetScoreRequest  true  "request body"
// @Success      200      {object}  domain.Score
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Router       /teams/{teamID}/scores/{roundID} [put]
// @Security     BearerAuth
func (h *ScoringHandler) HandleSetScore(ctx *gin.Context) {
	teamID, err := parseID(ctx, "teamID")
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalidID("teamID", err))
		return
	}
	roundID, err := parseID(ctx, "roundID")
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalidID("roundID", err))
		return
	}

	var req request.SetScoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	score, err := h.svc.SetScore(ctx.Request.Context(), teamID, roundID, req.Value, sessionUserID(ctx))
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("v1.HandleSetScore -> h.svc.SetScore -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, score)
}

// HandleLeaderboard godoc
// @Summary      Ranked leaderboard
// @Description  Teams ordered by total score. Ties go to the team created first.
// @Tags         scoring
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {array}   domain.LeaderboardEntry
// @Failure      404      {object}  response.Err
// @Router       /events/{eventID}/leaderboard [get]
// @Security     BearerAuth
func (h *ScoringHandler) HandleLeaderboard(ctx *gin.Context) {
	eventID, err := parseID(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalidID("eventID", err))
		return
	}

	entries, err := h.svc.Leaderboard(ctx.Request.Context(), eventID)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("v1.HandleLeaderboard -> h.svc.Leaderboard -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, entries)
}
