package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/benvon/life-tracker/internal/apperr"
	"github.com/benvon/life-tracker/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// List returns the uncompiled entries for date grouped by category.
// Every category is present in the result, empty when it has no entries.
func (i *Ingestor) List(ctx context.Context, date time.Time) (map[models.Category][]*models.PendingLog, error) {
	if date.IsZero() {
		return nil, apperr.Validation("date is required")
	}
	logs, err := i.pending.ListUncompiled(ctx, date)
	if err != nil {
		return nil, err
	}

	grouped := make(map[models.Category][]*models.PendingLog, len(models.Categories))
	for _, c := range models.Categories {
		grouped[c] = []*models.PendingLog{}
	}
	for _, log := range logs {
		grouped[log.Category] = append(grouped[log.Category], log)
	}
	return grouped, nil
}

// UpdateParsedData replaces the payload of an uncompiled entry with a manual correction.
// raw is decoded as the entry's category; JSON null clears the payload.
func (i *Ingestor) UpdateParsedData(ctx context.Context, id uuid.UUID, raw json.RawMessage) (*models.PendingLog, error) {
	log, err := i.pending.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if log.Compiled {
		return nil, apperr.Precondition("pending log has already been compiled")
	}

	payload, err := models.DecodePayload(log.Category, raw)
	if err != nil {
		return nil, apperr.Validation("invalid parsed_data for %s: %v", log.Category, err)
	}
	if err := i.pending.UpdatePayload(ctx, id, payload); err != nil {
		return nil, err
	}

	i.logger.Info("pending_entry_corrected",
		zap.String("pending_id", id.String()),
		zap.String("category", string(log.Category)),
	)
	log.Payload = payload
	return log, nil
}

// Delete removes an uncompiled entry
func (i *Ingestor) Delete(ctx context.Context, id uuid.UUID) error {
	if err := i.pending.Delete(ctx, id); err != nil {
		return err
	}
	i.logger.Info("pending_entry_deleted", zap.String("pending_id", id.String()))
	return nil
}
