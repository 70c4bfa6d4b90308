package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishtrace/internal/domain/models"
	"github.com/mamadbah2/fishtrace/internal/service/vendors"
)

type settingsRequest struct {
	StallName    string `json:"stallName"`
	Location     string `json:"location"`
	StallContact string `json:"stallContact"`
	StallHours   string `json:"stallHours"`
}

type addFishRequest struct {
	Name  string   `json:"name" binding:"required"`
	Price *float64 `json:"price" binding:"required"`
}

type priceRequest struct {
	Price *float64 `json:"price" binding:"required"`
}

// VendorHandler serves the signed-in vendor's stall management.
type VendorHandler struct {
	svc    *vendors.Service
	logger *zap.Logger
}

// NewVendorHandler constructs the vendor HTTP adapter.
func NewVendorHandler(svc *vendors.Service, logger *zap.Logger) *VendorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VendorHandler{svc: svc, logger: logger.Named("http.vendor")}
}

// Heartbeat records the vendor as present.
func (h *VendorHandler) Heartbeat(c *gin.Context) {
	at, err := h.svc.Heartbeat(c.Request.Context(), currentSession(c).Subject)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lastSeen": at})
}

// Stall returns the vendor's own stall.
func (h *VendorHandler) Stall(c *gin.Context) {
	view, err := h.svc.Stall(c.Request.Context(), currentSession(c).Subject)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateSettings edits the stall display fields.
func (h *VendorHandler) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	vendor, err := h.svc.UpdateSettings(c.Request.Context(), currentSession(c).Subject, models.StallSettings{
		StallName:    req.StallName,
		Location:     req.Location,
		StallContact: req.StallContact,
		StallHours:   req.StallHours,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

// AddFish lists a catalog fish at the stall.
func (h *VendorHandler) AddFish(c *gin.Context) {
	var req addFishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	vendor, err := h.svc.AddFish(c.Request.Context(), currentSession(c).Subject, req.Name, *req.Price)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, vendor)
}

// RemoveFish drops a fish from the stall.
func (h *VendorHandler) RemoveFish(c *gin.Context) {
	vendor, err := h.svc.RemoveFish(c.Request.Context(), currentSession(c).Subject, c.Param("fishName"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

// UpdatePrice changes one fish's price.
func (h *VendorHandler) UpdatePrice(c *gin.Context) {
	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	vendor, err := h.svc.UpdatePrice(c.Request.Context(), currentSession(c).Subject, c.Param("fishName"), *req.Price)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

// Activity returns the vendor's recent log.
func (h *VendorHandler) Activity(c *gin.Context) {
	entries, err := h.svc.Activity(c.Request.Context(), currentSession(c).Subject)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// StartSession opens a selling session.
func (h *VendorHandler) StartSession(c *gin.Context) {
	vendor, err := h.svc.StartSession(c.Request.Context(), currentSession(c).Subject)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, vendor.Session)
}

// EndSession closes the selling session.
func (h *VendorHandler) EndSession(c *gin.Context) {
	vendor, err := h.svc.EndSession(c.Request.Context(), currentSession(c).Subject)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, vendor.Session)
}

// AddableCatalog lists catalog fish not yet at the stall.
func (h *VendorHandler) AddableCatalog(c *gin.Context) {
	fish, err := h.svc.AddableCatalog(c.Request.Context(), currentSession(c).Subject)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fish": fish})
}
