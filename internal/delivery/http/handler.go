package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taabalselect/storefront/internal/domain"
	"github.com/taabalselect/storefront/internal/textutil"
)

// Version is reported by the health check
const Version = "1.0.0"

// CatalogService is the catalog as used by the handlers
type CatalogService interface {
	Load(ctx context.Context) (domain.Snapshot, error)
	Search(ctx context.Context, f domain.Filter) ([]domain.Product, domain.VisibilityFlags, error)
	Categories(ctx context.Context) ([]domain.CategoryCount, error)
	Product(ctx context.Context, id string) (domain.Product, error)
	Visibility(ctx context.Context) (domain.VisibilityFlags, error)
}

// CartService is the cart with its persistence state
type CartService interface {
	domain.CartStore
	Degraded() bool
}

// OrderBuilder renders the cart as an order
type OrderBuilder interface {
	Build(items []domain.LineItem, subtotal float64, vis domain.VisibilityFlags) domain.Order
	VisibleSubtotal(subtotal float64, vis domain.VisibilityFlags) float64
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog CatalogService
	cart    CartService
	orders  OrderBuilder
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(catalog CatalogService, cart CartService, orders OrderBuilder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		catalog: catalog,
		cart:    cart,
		orders:  orders,
		logger:  logger.Named("http"),
	}
}

// CartResponse is the cart as returned by every cart endpoint
type CartResponse struct {
	Items     []domain.LineItem `json:"items"`
	Count     int               `json:"count"`
	Subtotal  float64           `json:"subtotal"`
	ShowPrice bool              `json:"showPrice"`
	Degraded  bool              `json:"degraded"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "storefront",
		"version": Version,
	})
}

// ListCatalog returns the products matching ?q= and ?category=
func (h *Handler) ListCatalog(c *gin.Context) {
	var filter domain.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.respondError(c, domain.ErrInvalidRequest)
		return
	}

	products, vis, err := h.catalog.Search(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":   products,
		"visibility": vis,
		"count":      len(products),
	})
}

// ListCategories returns the distinct categories with counts
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	total := 0
	for _, cat := range categories {
		total += cat.Count
	}
	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"total":      total,
	})
}

// ReloadCatalog forces a feed load
func (h *Handler) ReloadCatalog(c *gin.Context) {
	snap, err := h.catalog.Load(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":   len(snap.Products),
		"visibility": snap.Visibility,
		"loadedAt":   snap.LoadedAt.Format(time.RFC3339),
	})
}

// GetCart returns the cart contents
func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cartResponse(c.Request.Context()))
}

// AddItem adds a catalog product to the cart
func (h *Handler) AddItem(c *gin.Context) {
	var req domain.AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, domain.ErrInvalidRequest)
		return
	}

	product, err := h.catalog.Product(c.Request.Context(), req.ProductID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.cart.Add(product, textutil.ToQty(req.Qty))
	c.JSON(http.StatusOK, h.cartResponse(c.Request.Context()))
}

// SetItemQty overwrites the quantity of a cart line
func (h *Handler) SetItemQty(c *gin.Context) {
	var req domain.SetQtyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, domain.ErrInvalidRequest)
		return
	}

	if !h.cart.SetQty(c.Param("id"), textutil.ToQty(req.Qty)) {
		h.respondError(c, domain.ErrItemNotFound)
		return
	}
	c.JSON(http.StatusOK, h.cartResponse(c.Request.Context()))
}

// RemoveItem deletes a cart line. Unknown ids are not an error.
func (h *Handler) RemoveItem(c *gin.Context) {
	h.cart.Remove(c.Param("id"))
	c.JSON(http.StatusOK, h.cartResponse(c.Request.Context()))
}

// ClearCart empties the cart
func (h *Handler) ClearCart(c *gin.Context) {
	h.cart.Clear()
	c.JSON(http.StatusOK, h.cartResponse(c.Request.Context()))
}

// GetOrder returns the order text and the WhatsApp and e-mail links
func (h *Handler) GetOrder(c *gin.Context) {
	vis := h.visibility(c.Request.Context())
	order := h.orders.Build(h.cart.List(), h.cart.Subtotal(), vis)
	c.JSON(http.StatusOK, order)
}

func (h *Handler) cartResponse(ctx context.Context) CartResponse {
	vis := h.visibility(ctx)
	return CartResponse{
		Items:     h.cart.List(),
		Count:     h.cart.Count(),
		Subtotal:  h.orders.VisibleSubtotal(h.cart.Subtotal(), vis),
		ShowPrice: vis.ShowPrice,
		Degraded:  h.cart.Degraded(),
	}
}

// visibility returns the catalog flags, or all-visible when the feed
// has never loaded
func (h *Handler) visibility(ctx context.Context) domain.VisibilityFlags {
	vis, err := h.catalog.Visibility(ctx)
	if err != nil {
		h.logger.Warn("visibility unavailable, using defaults", zap.Error(err))
		return domain.DefaultVisibility()
	}
	return vis
}

// respondError maps domain errors to HTTP statuses
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, domain.ErrFeedUnavailable):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err), zap.String("request_id", c.GetString(requestIDKey)))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
