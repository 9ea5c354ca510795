package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cakewatch/internal/model"
	"cakewatch/pkg/logbuf"
)

// StatusProvider exposes the ingestion loop state.
type StatusProvider interface {
	Status() model.RunStatus
}

// StatusHandler serves the run status plus the recent log ring.
type StatusHandler struct {
	provider StatusProvider
	logs     *logbuf.Buffer
}

func NewStatusHandler(provider StatusProvider, logs *logbuf.Buffer) *StatusHandler {
	return &StatusHandler{provider: provider, logs: logs}
}

// Status reports the watcher state.
// GET /api/status
func (h *StatusHandler) Status(c *gin.Context) {
	st := h.provider.Status()

	var lastCheck any
	if !st.LastCheck.IsZero() {
		lastCheck = st.LastCheck.UTC().Format(time.RFC3339)
	}
	var lastError any
	if st.LastError != "" {
		lastError = st.LastError
	}

	c.JSON(http.StatusOK, gin.H{
		"lastCheck":      lastCheck,
		"processedCount": st.ProcessedCount,
		"lastError":      lastError,
		"logs":           h.logs.Lines(),
	})
}
