package v1

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/eventpass-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/eventpass-api/internal/domain"
)

type ExportService interface {
	ExportScans(ctx context.Context, w io.Writer, eventID uint, outcome domain.ScanOutcome) error
}

type ExportHandler struct {
	svc ExportService
}

func NewExportHandler(svc ExportService) *ExportHandler {
	return &ExportHandler{
		svc: svc,
	}
}

// HandleExportScans godoc
// @Summary      Download the scan log as CSV
// @Description  Rows are grouped by checkpoint in sequence order, then by time.
// @Tags         exports
// @Produce      text/csv
// @Param        eventID  path      int     true   "Event ID"
// @Param        outcome  query     string  false  "Only include attempts with this outcome"
// @Success      200      {file}    file
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /events/{eventID}/scans/export.csv [get]
// @Security     BearerAuth
func (h *ExportHandler) HandleExportScans(ctx *gin.Context) {
	eventID, err := parseID(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrInvalidID("eventID", err))
		return
	}

	// Buffered so a failure halfway through still renders as a JSON error.
	var buf bytes.Buffer
	outcome := domain.ScanOutcome(ctx.Query("outcome"))
	if err := h.svc.ExportScans(ctx.Request.Context(), &buf, eventID, outcome); err != nil {
		response.RenderErr(ctx, response.FromDomain(fmt.Errorf("v1.HandleExportScans -> h.svc.ExportScans -> %w", err)))
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="event-%d-scans.csv"`, eventID))
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
