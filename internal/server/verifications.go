package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pasecure/idverify/constants"
	"github.com/pasecure/idverify/internal/notify"
	"github.com/pasecure/idverify/internal/record"
	"github.com/pasecure/idverify/internal/repository"
)

// handleUpload accepts a document image, stores it, and creates the
// verification record in processing state before classifying. The classifier
// verdict lands as a patch through the controller so it merges like any other
// writer's. Text recognition is left for the worker; the record starts with
// recognition pending.
func (s *Server) handleUpload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}
	defer file.Close()

	if s.upload.MaxFileSize > 0 && header.Size > s.upload.MaxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "file too large",
			"details": fmt.Sprintf("max %d bytes, got %d", s.upload.MaxFileSize, header.Size),
		})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	contentType = strings.TrimSpace(strings.Split(contentType, ";")[0])
	if !constants.AllowedFileType(s.upload.AllowedFileTypes, contentType) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "unsupported file type",
			"details": contentType,
		})
		return
	}

	id := uuid.New()
	objectPath := fmt.Sprintf("uploads/%s%s", id, strings.ToLower(filepath.Ext(header.Filename)))

	ctx := c.Request.Context()
	if err := s.store.Upload(ctx, objectPath, data, contentType); err != nil {
		s.logger.Error("server.upload.store_failed", "error", err, "request_id", requestID(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}

	v := &record.Verification{
		ID:        id,
		FilePath:  objectPath,
		FileType:  contentType,
		FileSize:  header.Size,
		Status:    constants.StatusProcessing,
		OCRStatus: constants.OCRPending,
	}
	if err := s.records.Create(ctx, v); err != nil {
		s.logger.Error("server.upload.create_failed", "error", err, "request_id", requestID(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create record"})
		return
	}

	if s.hub != nil {
		s.hub.Publish(notify.Event{
			Type:       notify.EventInsert,
			Collection: notify.CollectionVerifications,
			New:        *v,
		})
	}
	s.audit(ctx, "info", "verification created", map[string]any{
		"verification_id": id.String(),
		"status":          string(v.Status),
		"file_type":       contentType,
		"file_size":       header.Size,
	})

	var patch record.Patch
	res, err := s.classifier.Classify(ctx, data)
	if err != nil {
		// Classification failure is terminal for the verdict but not for the
		// record: it stays stored so recognition can still run.
		failed := constants.StatusFailed
		patch.Status = &failed
		s.audit(ctx, "error", "classification failed", map[string]any{
			"verification_id": id.String(),
			"error":           err.Error(),
		})
	} else {
		patch.Status = &res.Status
		patch.ConfidenceScore = &res.Confidence
		patch.DetectedIDType = &res.IDType
		patch.ProcessingTimeMs = &res.ProcessingMs
		patch.SecurityFeatures = res.SecurityFeatures
	}

	updated, err := s.controller.Apply(ctx, id, patch)
	if err != nil {
		s.logger.Error("server.upload.verdict_failed", "error", err, "request_id", requestID(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record verdict"})
		return
	}

	c.JSON(http.StatusCreated, updated)
}

func (s *Server) handleList(c *gin.Context) {
	filter := repository.ListFilter{}
	if status := c.Query("status"); status != "" {
		filter.Status = constants.VerificationStatus(status)
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		filter.Limit = limit
	}

	recs, err := s.records.List(c.Request.Context(), filter)
	if err != nil {
		s.logger.Error("server.list_failed", "error", err, "request_id", requestID(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list records"})
		return
	}
	if recs == nil {
		recs = []*record.Verification{}
	}
	c.JSON(http.StatusOK, gin.H{"verifications": recs, "count": len(recs)})
}

func (s *Server) handleGet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	v, err := s.records.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "verification not found"})
		return
	}
	c.JSON(http.StatusOK, v)
}

// handleWorkerRun triggers one recognition pass. Failures return the error
// and its details so the operator UI can show why a record failed.
func (s *Server) handleWorkerRun(c *gin.Context) {
	res, err := s.worker.RunOnce(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "worker pass failed",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, res)
}

// audit appends to the system log table and mirrors the entry onto the
// change feed. Audit failures are logged, not surfaced; the request already
// succeeded or failed on its own terms.
func (s *Server) audit(ctx context.Context, level, msg string, logCtx map[string]any) {
	entry := &record.SystemLogEntry{Level: level, Message: msg, Context: logCtx}
	if err := s.logs.Append(ctx, entry); err != nil {
		s.logger.Error("server.audit_failed", "error", err)
		return
	}
	if s.hub != nil {
		s.hub.Publish(notify.Event{
			Type:       notify.EventInsert,
			Collection: notify.CollectionLogs,
			New:        entry,
		})
	}
}
