package inventory

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for credit listings
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new inventory handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers marketplace listing routes. The issue route is
// expected to sit behind the admin role middleware.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, admin *gin.RouterGroup) {
	listings := router.Group("/listings")
	{
		listings.GET("", h.listListings)
		listings.GET("/:id", h.getListing)
	}
	admin.POST("/listings/:id/issue", h.issueCredits)
}

// listListings handles GET /api/v1/listings
func (h *Handler) listListings(c *gin.Context) {
	listings, err := h.service.ListListings(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list listings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, listings)
}

// getListing handles GET /api/v1/listings/:id
func (h *Handler) getListing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing id"})
		return
	}

	listing, err := h.service.GetListing(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
			return
		}
		h.logger.Error("Failed to get listing", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, listing)
}

type issueRequest struct {
	Amount int64 `json:"amount"`
}

// issueCredits handles POST /api/v1/listings/:id/issue
func (h *Handler) issueCredits(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing id"})
		return
	}

	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Issue(c.Request.Context(), id, req.Amount); err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			h.logger.Error("Failed to issue credits", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	listing, err := h.service.GetListing(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to reload listing after issuance", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "issued"})
		return
	}

	c.JSON(http.StatusOK, listing)
}
