package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pasecure/idverify/internal/analytics"
	"github.com/pasecure/idverify/internal/record"
	"github.com/pasecure/idverify/internal/repository"
)

func (s *Server) loadDataset(c *gin.Context) ([]record.Verification, bool) {
	recs, err := s.records.List(c.Request.Context(), repository.ListFilter{})
	if err != nil {
		s.logger.Error("server.dataset_failed", "error", err, "request_id", requestID(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load records"})
		return nil, false
	}
	data := make([]record.Verification, len(recs))
	for i, r := range recs {
		data[i] = *r
	}
	return data, true
}

func (s *Server) handleAnalytics(c *gin.Context) {
	data, ok := s.loadDataset(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analytics.CalculateStats(data))
}

func (s *Server) handleInsights(c *gin.Context) {
	data, ok := s.loadDataset(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analytics.CalculateInsights(data, time.Now()))
}

func (s *Server) handleLogs(c *gin.Context) {
	limit := 100
	if l := c.Query("limit"); l != "" {
		fmt.Sscanf(l, "%d", &limit)
	}
	logs, err := s.logs.Recent(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("server.logs_failed", "error", err, "request_id", requestID(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load logs"})
		return
	}
	if logs == nil {
		logs = []*record.SystemLogEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}

func (s *Server) handleSettings(c *gin.Context) {
	settings, err := s.settings.All(c.Request.Context())
	if err != nil {
		s.logger.Error("server.settings_failed", "error", err, "request_id", requestID(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}
	if settings == nil {
		settings = []*repository.Setting{}
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (s *Server) handleSetSetting(c *gin.Context) {
	key := c.Param("key")
	var body struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Value == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return
	}
	if err := s.settings.Set(c.Request.Context(), key, body.Value); err != nil {
		s.logger.Error("server.setting_update_failed", "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update setting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": body.Value})
}

func (s *Server) handleExport(c *gin.Context) {
	data, err := s.exporter.ExportXLSX(c.Request.Context(), repository.ListFilter{})
	if err != nil {
		s.logger.Error("server.export_failed", "error", err, "request_id", requestID(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	filename := fmt.Sprintf("verifications-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// handleEvents streams change notifications as server-sent events until the
// client disconnects.
func (s *Server) handleEvents(c *gin.Context) {
	if s.hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event feed disabled"})
		return
	}

	events, cancel := s.hub.Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-keepalive.C:
			if _, err := io.WriteString(c.Writer, ": keepalive\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		case ev, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				s.logger.Error("server.events.marshal_failed", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}
