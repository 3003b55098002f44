package extraction

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pasecure/idverify/constants"
	"github.com/pasecure/idverify/internal/common"
	"github.com/pasecure/idverify/internal/notify"
	"github.com/pasecure/idverify/internal/record"
	"github.com/pasecure/idverify/internal/reconcile"
	"github.com/pasecure/idverify/internal/repository"
	"github.com/pasecure/idverify/internal/storage"
)

// Recognizer turns raw image bytes into free text. Implemented by the
// recognition HTTP client.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, filename string) (string, error)
}

// RunResult describes one worker pass.
type RunResult struct {
	Processed bool                `json:"processed"`
	RecordID  string              `json:"record_id,omitempty"`
	OCRStatus constants.OCRStatus `json:"ocr_status,omitempty"`
}

// Worker drains the recognition queue one record per pass, oldest first.
type Worker struct {
	records    repository.VerificationRepository
	logs       repository.LogRepository
	store      storage.ObjectStore
	recognizer Recognizer
	controller *reconcile.Controller
	hub        *notify.Hub
	logger     *slog.Logger
}

func NewWorker(
	records repository.VerificationRepository,
	logs repository.LogRepository,
	store storage.ObjectStore,
	recognizer Recognizer,
	controller *reconcile.Controller,
	hub *notify.Hub,
	logger *slog.Logger,
) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		records:    records,
		logs:       logs,
		store:      store,
		recognizer: recognizer,
		controller: controller,
		hub:        hub,
		logger:     logger,
	}
}

// RunOnce picks the oldest record awaiting recognition and processes it. An
// empty queue is a successful no-op. Failures mark the record's recognition
// failed and return the error; the record's verification status is untouched.
func (w *Worker) RunOnce(ctx context.Context) (*RunResult, error) {
	v, err := w.records.OldestPendingOCR(ctx)
	if errors.Is(err, common.ErrNotFound) {
		w.logger.Debug("worker.queue_empty")
		return &RunResult{Processed: false}, nil
	}
	if err != nil {
		return nil, err
	}

	w.logger.Info("worker.picked", "id", v.ID, "file_path", v.FilePath)

	data, err := w.store.Download(ctx, v.FilePath)
	if err != nil {
		w.failRecognition(ctx, v, "file download failed", err)
		return nil, err
	}

	text, err := w.recognizer.Recognize(ctx, data, v.FilePath)
	if err != nil {
		w.failRecognition(ctx, v, "text recognition failed", err)
		return nil, err
	}

	fields := Parse(text)

	complete := constants.OCRComplete
	patch := record.Patch{
		OCRStatus:          &complete,
		OCRText:            &text,
		DetectedIDType:     fields.IDType,
		DetectedIDNumber:   fields.IDNumber,
		DetectedHolderName: fields.HolderName,
	}
	if _, err := w.controller.Apply(ctx, v.ID, patch); err != nil {
		return nil, err
	}

	w.audit(ctx, "info", "recognition completed", map[string]any{
		"verification_id": v.ID.String(),
		"text_length":     len(text),
		"id_type_found":   fields.IDType != nil,
		"id_number_found": fields.IDNumber != nil,
		"name_found":      fields.HolderName != nil,
	})
	w.logger.Info("worker.completed", "id", v.ID, "text_length", len(text))

	return &RunResult{Processed: true, RecordID: v.ID.String(), OCRStatus: constants.OCRComplete}, nil
}

// Run loops RunOnce on the given interval until the context is cancelled.
func (w *Worker) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info("worker.started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker.stopped")
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.Error("worker.pass_failed", "error", err)
			}
		}
	}
}

// failRecognition marks the record's recognition failed and records the
// failure in the audit trail. Persistence errors here are logged and
// swallowed so the original failure is what callers see.
func (w *Worker) failRecognition(ctx context.Context, v *record.Verification, msg string, cause error) {
	failed := constants.OCRFailed
	if _, err := w.controller.Apply(ctx, v.ID, record.Patch{OCRStatus: &failed}); err != nil {
		w.logger.Error("worker.mark_failed_error", "id", v.ID, "error", err)
	}
	w.audit(ctx, "error", msg, map[string]any{
		"verification_id": v.ID.String(),
		"file_path":       v.FilePath,
		"error":           cause.Error(),
	})
	w.logger.Error("worker.failed", "id", v.ID, "reason", msg, "error", cause)
}

// audit appends to the system log table and mirrors the entry onto the
// change feed.
func (w *Worker) audit(ctx context.Context, level, msg string, logCtx map[string]any) {
	entry := &record.SystemLogEntry{Level: level, Message: msg, Context: logCtx}
	if err := w.logs.Append(ctx, entry); err != nil {
		w.logger.Error("worker.audit_failed", "error", err)
		return
	}
	if w.hub != nil {
		w.hub.Publish(notify.Event{
			Type:       notify.EventInsert,
			Collection: notify.CollectionLogs,
			New:        entry,
		})
	}
}
