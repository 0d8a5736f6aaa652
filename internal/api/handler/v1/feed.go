package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vietanh2810/eventpass-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/eventpass-api/internal/domain"
	"github.com/vietanh2810/eventpass-api/internal/feed"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 500

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type ScanFeed interface {
	Recent(ctx context.Context, eventID uint, limit int64) ([]domain.ScanAttempt, error)
	Subscribe(ctx context.Context, eventID uint) (<-chan domain.ScanAttempt, error)
}

type FeedHandler struct {
	feed     ScanFeed
	upgrader websocket.Upgrader
}

func NewFeedHandler(scans ScanFeed, allowedOrigins []string) *FeedHandler {
	return &FeedHandler{
		feed: scans,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// HandleRecentScans godoc
// @Summary      Most recent scan attempts
// @Tags         scans
// @Produce      json
// @Param        eventID  path      int  true   "Event ID"
// @Param        limit    query     int  false  "Number of attempts, newest first (max 500)"
// @Success      200      {array}   domain.ScanAttempt
// @Failure      400      {object}  response.Err
// @Failure      503      {object}  response.Err
// @Router       /events/{eventID}/scans/recent [get]
// @Security     BearerAuth
func (h *FeedHandler) HandleRecentScans(ctx *gin.Context) {
	eventID, err := parseID(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalidID("eventID", err))
		return
	}

	limit := int64(defaultRecentLimit)
	if raw := ctx.Query("limit"); raw != "" {
		limit, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 1 || limit > maxRecentLimit {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("limit must be between 1 and %d", maxRecentLimit)))
			return
		}
	}

	attempts, err := h.feed.Recent(ctx.Request.Context(), eventID, limit)
	if err != nil {
		if errors.Is(err, feed.ErrDisabled) {
			response.RenderErr(ctx, response.ErrServiceUnavailable(err))
			return
		}
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("v1.HandleRecentScans -> h.feed.Recent -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, attempts)
}

// HandleLiveScans godoc
// @Summary      Stream scan attempts over a websocket
// @Description  Each message is one JSON encoded scan attempt. Pass the session token as access_token.
// @Tags         scans
// @Param        eventID       path   int     true  "Event ID"
// @Param        access_token  query  string  true  "Session token"
// @Success      101  {string}  string  "Switching Protocols"
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      503  {object}  response.Err
// @Router       /events/{eventID}/scans/live [get]
func (h *FeedHandler) HandleLiveScans(ctx *gin.Context) {
	eventID, err := parseID(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalidID("eventID", err))
		return
	}

	subCtx, cancel := context.WithCancel(context.Background())
	attempts, err := h.feed.Subscribe(subCtx, eventID)
	if err != nil {
		cancel()
		if errors.Is(err, feed.ErrDisabled) {
			response.RenderErr(ctx, response.ErrServiceUnavailable(err))
			return
		}
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("v1.HandleLiveScans -> h.feed.Subscribe -> %w", err)))
		return
	}

	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		cancel()
		zap.L().Warn("websocket upgrade failed", zap.Uint("event_id", eventID), zap.Error(err))
		return
	}

	go readPump(conn, cancel)
	go writePump(conn, attempts, cancel)
}

// readPump drains client frames so pongs and close frames are processed.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Debug("live feed client dropped", zap.Error(err))
			}
			return
		}
	}
}

func writePump(conn *websocket.Conn, attempts <-chan domain.ScanAttempt, cancel context.CancelFunc) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
		_ = conn.Close()
	}()

	for {
		select {
		case attempt, ok := <-attempts:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(attempt); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
