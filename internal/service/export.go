package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/vietanh2810/eventpass-api/internal/domain"
	"github.com/vietanh2810/eventpass-api/internal/pkg/csvexport"
)

// Checkpoints missing from the event's sequence sort after every configured one.
const unmappedCheckpointIndex = 99

var ErrInvalidOutcomeFilter = domain.Invalid("unknown scan outcome")

var scanExportHeader = []string{"checkpoint", "timestamp", "participant", "email", "volunteer", "outcome", "detail"}

type ScanExportRepository interface {
	ExportRows(ctx context.Context, eventID uint, outcome domain.ScanOutcome) ([]domain.ScanExportRow, error)
}

type ExportEventRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Event, error)
}

type ExportService struct {
	scans  ScanExportRepository
	events ExportEventRepository
}

func NewExportService(scans ScanExportRepository, events ExportEventRepository) *ExportService {
	return &ExportService{
		scans:  scans,
		events: events,
	}
}

// ExportScans writes the event's scan log as CSV. An empty outcome exports every attempt.
func (s *ExportService) ExportScans(ctx context.Context, w io.Writer, eventID uint, outcome domain.ScanOutcome) error {
	if outcome != "" && !outcome.Valid() {
		return ErrInvalidOutcomeFilter
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("s.events.FindByID -> %w", err)
	}

	rows, err := s.scans.ExportRows(ctx, eventID, outcome)
	if err != nil {
		return fmt.Errorf("s.scans.ExportRows -> %w", err)
	}

	sorted := orderScanRows(event, rows)

	out := csvexport.NewWriter(w)
	if err := out.Write(scanExportHeader...); err != nil {
		return err
	}
	for _, r := range sorted {
		if err := out.Write(
			checkpointLabel(r.index, r.Checkpoint),
			r.Timestamp.UTC().Format(time.RFC3339),
			r.ParticipantName,
			r.ParticipantEmail,
			r.VolunteerName,
			string(r.Outcome),
			r.Detail,
		); err != nil {
			return err
		}
	}

	return out.Flush()
}

type indexedScanRow struct {
	domain.ScanExportRow
	index int
}

func orderScanRows(event domain.Event, rows []domain.ScanExportRow) []indexedScanRow {
	positions := make(map[string]int, len(event.Checkpoints))
	for _, cp := range event.Checkpoints {
		positions[cp.Name] = cp.Position
	}

	indexed := make([]indexedScanRow, len(rows))
	for i, r := range rows {
		idx, ok := positions[r.Checkpoint]
		if !ok {
			idx = unmappedCheckpointIndex
		}
		indexed[i] = indexedScanRow{ScanExportRow: r, index: idx}
	}

	sort.SliceStable(indexed, func(i, j int) bool {
		a, b := indexed[i], indexed[j]
		if a.index != b.index {
			return a.index < b.index
		}
		return a.Timestamp.Before(b.Timestamp)
	})

	return indexed
}

func checkpointLabel(index int, name string) string {
	return fmt.Sprintf("%02d-%s", index, name)
}
