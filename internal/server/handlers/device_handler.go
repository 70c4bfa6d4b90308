package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishtrace/internal/service/vendors"
)

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// DeviceHandler receives readings from stall scales.
type DeviceHandler struct {
	svc    *vendors.Service
	logger *zap.Logger
}

// NewDeviceHandler constructs the device HTTP adapter.
func NewDeviceHandler(svc *vendors.Service, logger *zap.Logger) *DeviceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceHandler{svc: svc, logger: logger.Named("http.device")}
}

// ReportQuantity stores a scale reading for one stall entry.
func (h *DeviceHandler) ReportQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	entry, err := h.svc.ReportQuantity(c.Request.Context(), c.Param("vendorId"), c.Param("fishName"), *req.Quantity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}
