package ledger

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the trading ledger
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new ledger handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers ledger routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	entries := router.Group("/ledger")
	{
		entries.GET("", h.listEntries)
		entries.POST("", h.appendEntry)
		entries.GET("/export", h.exportEntries)
	}
}

type appendEntryRequest struct {
	TxHash     string     `json:"txHash"`
	Action     Action     `json:"action"`
	ListingID  string     `json:"listingId"`
	From       string     `json:"from"`
	To         string     `json:"to"`
	Timestamp  *time.Time `json:"timestamp"`
	AmountTons float64    `json:"amountTons"`
}

// listEntries handles GET /api/v1/ledger
func (h *Handler) listEntries(c *gin.Context) {
	entries, err := h.service.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list ledger entries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// appendEntry handles POST /api/v1/ledger
func (h *Handler) appendEntry(c *gin.Context) {
	var req appendEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	entry := &Entry{
		TxHash:     req.TxHash,
		Action:     req.Action,
		ListingID:  req.ListingID,
		From:       req.From,
		To:         req.To,
		AmountTons: req.AmountTons,
	}
	if req.Timestamp != nil {
		entry.Timestamp = *req.Timestamp
	}

	stored, err := h.service.Append(c.Request.Context(), entry)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to append ledger entry", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, stored)
}

// exportEntries handles GET /api/v1/ledger/export
func (h *Handler) exportEntries(c *gin.Context) {
	entries, err := h.service.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to export ledger", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("ledger_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := WriteXLSX(c.Writer, entries); err != nil {
		h.logger.Error("Failed to write ledger export", zap.Error(err))
	}
}
