// Package reconcile applies partial updates from the two pipeline writers to
// stored verification records and emits the resulting change notifications.
package reconcile

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pasecure/idverify/internal/notify"
	"github.com/pasecure/idverify/internal/record"
	"github.com/pasecure/idverify/internal/repository"
)

// Controller is the single write path for record updates. It loads the
// current state, runs the merge reducer, persists only the columns the patch
// touched, and publishes an update notification when the verification status
// advances or recognition reaches a terminal state. Status is monotonic and
// OCRBecameTerminal fires only on the transition, so re-applying a patch
// never notifies twice.
type Controller struct {
	records repository.VerificationRepository
	hub     *notify.Hub
	logger  *slog.Logger
}

func NewController(records repository.VerificationRepository, hub *notify.Hub, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{records: records, hub: hub, logger: logger}
}

// Apply merges the patch into the stored record and returns the new state.
// Columns the patch omits are never written, so the classification and
// extraction writers cannot clobber each other's fields.
func (c *Controller) Apply(ctx context.Context, id uuid.UUID, p record.Patch) (*record.Verification, error) {
	if p.IsZero() {
		return c.records.GetByID(ctx, id)
	}

	current, err := c.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := record.Merge(*current, p)

	effective := p
	if p.Status != nil && next.Status == current.Status {
		// The reducer dropped a non-advancing status move; don't write it.
		effective.Status = nil
	}
	if err := c.records.UpdateFields(ctx, id, effective); err != nil {
		return nil, err
	}

	statusAdvanced := next.Status != current.Status
	ocrTerminal := record.OCRBecameTerminal(*current, next)
	if c.hub != nil && (statusAdvanced || ocrTerminal) {
		c.hub.Publish(notify.Event{
			Type:       notify.EventUpdate,
			Collection: notify.CollectionVerifications,
			New:        next,
		})
		c.logger.Info("reconcile.updated",
			"id", id,
			"status", next.Status,
			"ocr_status", next.OCRStatus,
		)
	}

	return &next, nil
}
