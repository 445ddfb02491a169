package holdings

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"terra-offset/credit-exchange-backend/internal/auth"
)

// Handler handles HTTP requests for buyer holdings
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new holdings handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers cart, purchase, portfolio, and claim routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	cart := router.Group("/cart")
	{
		cart.GET("", h.getCart)
		cart.POST("", h.addToCart)
		cart.DELETE("/:id", h.removeFromCart)
		cart.DELETE("", h.clearCart)
	}

	router.POST("/purchase", h.purchase)
	router.GET("/portfolio", h.getPortfolio)
	router.POST("/portfolio/:id/claim", h.claim)
	router.GET("/claims", h.getClaims)
}

type addToCartRequest struct {
	ListingID uuid.UUID `json:"listing_id"`
	Quantity  int64     `json:"quantity"`
}

// getCart handles GET /api/v1/cart
func (h *Handler) getCart(c *gin.Context) {
	cart, err := h.service.Cart(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.logger.Error("Failed to load cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cart)
}

// addToCart handles POST /api/v1/cart
func (h *Handler) addToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.service.AddToCart(c.Request.Context(), auth.UserID(c), req.ListingID, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// removeFromCart handles DELETE /api/v1/cart/:id
func (h *Handler) removeFromCart(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cart item id"})
		return
	}

	if err := h.service.RemoveFromCart(c.Request.Context(), auth.UserID(c), itemID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// clearCart handles DELETE /api/v1/cart
func (h *Handler) clearCart(c *gin.Context) {
	if err := h.service.ClearCart(c.Request.Context(), auth.UserID(c)); err != nil {
		h.logger.Error("Failed to clear cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// purchase handles POST /api/v1/purchase
func (h *Handler) purchase(c *gin.Context) {
	items, err := h.service.Purchase(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"purchased": items})
}

// getPortfolio handles GET /api/v1/portfolio
func (h *Handler) getPortfolio(c *gin.Context) {
	portfolio, err := h.service.Portfolio(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.logger.Error("Failed to load portfolio", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, portfolio)
}

// claim handles POST /api/v1/portfolio/:id/claim
func (h *Handler) claim(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid portfolio item id"})
		return
	}

	record, err := h.service.Claim(c.Request.Context(), auth.UserID(c), itemID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// getClaims handles GET /api/v1/claims
func (h *Handler) getClaims(c *gin.Context) {
	history, err := h.service.Claims(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.logger.Error("Failed to load claim history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrDuplicateCartLine):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Holdings operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
