package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cakewatch/internal/ledger"
	"cakewatch/pkg/metrics"
)

// APIHandler serves the transaction query API backed by the in-memory
// ledger.
type APIHandler struct {
	ledger *ledger.Ledger
	waiter *ledger.Waiter
	logger *zap.Logger
}

func NewAPIHandler(ld *ledger.Ledger, waiter *ledger.Waiter, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		ledger: ld,
		waiter: waiter,
		logger: logger,
	}
}

// RecentCreditTransactions returns the retained credit transactions.
// GET /api/recent-credit-transactions?since=2023-09-02T14:00:00Z
func (h *APIHandler) RecentCreditTransactions(c *gin.Context) {
	var since *time.Time
	if s := c.Query("since"); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since parameter, expected an RFC3339 timestamp"})
			return
		}
		since = &ts
	}

	txs := h.ledger.Credits(since)
	h.logger.Info("Returning credit transactions", zap.Int("count", len(txs)))

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"count":        len(txs),
		"transactions": txs,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

type checkRequest struct {
	Amount  string `json:"amount" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// CheckTransaction answers whether a payment matching amount and memo text
// has arrived. The request blocks while the waiter polls the ledger, up to
// the retry ceiling.
// POST /api/check-transaction
func (h *APIHandler) CheckTransaction(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.RecordCheckRequest("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing amount or content"})
		return
	}

	h.logger.Info("Received transaction check",
		zap.String("amount", req.Amount),
		zap.String("content", req.Content),
	)

	tx, ok := h.waiter.Wait(c.Request.Context(), ledger.Query{
		Amount:  req.Amount,
		Content: req.Content,
	})
	if !ok {
		metrics.RecordCheckRequest("not_found")
		c.JSON(http.StatusNotFound, gin.H{"status": "not_found"})
		return
	}

	metrics.RecordCheckRequest("found")
	c.JSON(http.StatusOK, gin.H{"status": "found", "transaction": tx})
}
