package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishtrace/internal/service/marketplace"
)

// BuyerHandler serves the unauthenticated marketplace views.
type BuyerHandler struct {
	svc    *marketplace.Service
	logger *zap.Logger
}

// NewBuyerHandler constructs the buyer HTTP adapter.
func NewBuyerHandler(svc *marketplace.Service, logger *zap.Logger) *BuyerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BuyerHandler{svc: svc, logger: logger.Named("http.buyer")}
}

// Dashboard lists visible catalog fish with their stock.
func (h *BuyerHandler) Dashboard(c *gin.Context) {
	view, err := h.svc.Dashboard(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Fish returns one fish with the stalls selling it.
func (h *BuyerHandler) Fish(c *gin.Context) {
	view, err := h.svc.FishDetail(c.Request.Context(), c.Param("fishName"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Stall returns one stall's public profile and stock.
func (h *BuyerHandler) Stall(c *gin.Context) {
	view, err := h.svc.StallDetail(c.Request.Context(), c.Param("vendorId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// StallsAt lists stalls at a location holding a fish.
func (h *BuyerHandler) StallsAt(c *gin.Context) {
	view, err := h.svc.StallsAt(c.Request.Context(), c.Query("location"), c.Query("fish"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
