package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxLogBatch = 100

// UILogEntry represents a log entry from the browser
type UILogEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context"`
	Timestamp string                 `json:"timestamp"`
}

// UILogStreamRequest represents a batch of logs from the browser
type UILogStreamRequest struct {
	Entries []UILogEntry `json:"entries"`
}

// StreamLogs writes browser console logs into the server log
func (h *Handlers) StreamLogs(c *gin.Context) {
	var req UILogStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if len(req.Entries) == 0 || len(req.Entries) > maxLogBatch {
		badRequest(c, errors.New("a log batch holds 1 to 100 entries"))
		return
	}

	logger := h.logger.Named("ui")
	for _, entry := range req.Entries {
		fields := make([]zap.Field, 0, len(entry.Context)+1)
		fields = append(fields, zap.String("ui_timestamp", entry.Timestamp))
		for key, value := range entry.Context {
			fields = append(fields, zap.Any(key, value))
		}

		switch entry.Level {
		case "error":
			logger.Error(entry.Message, fields...)
		case "warn":
			logger.Warn(entry.Message, fields...)
		case "debug":
			logger.Debug(entry.Message, fields...)
		default:
			logger.Info(entry.Message, fields...)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "entries_processed": len(req.Entries)})
}
