package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishtrace/internal/domain/models"
	"github.com/mamadbah2/fishtrace/internal/service/admin"
)

type vendorRequest struct {
	StallName string `json:"stallName"`
	Location  string `json:"location"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

func (r vendorRequest) profile() models.VendorProfile {
	return models.VendorProfile{StallName: r.StallName, Location: r.Location, Username: r.Username, Password: r.Password}
}

type fishRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// StockExporter triggers an on-demand stock report.
type StockExporter interface {
	ExportStock(ctx context.Context) (int, error)
}

// AdminHandler serves vendor roster and catalog management.
type AdminHandler struct {
	svc      *admin.Service
	exporter StockExporter
	logger   *zap.Logger
}

// NewAdminHandler constructs the admin HTTP adapter. exporter may be nil.
func NewAdminHandler(svc *admin.Service, exporter StockExporter, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{svc: svc, exporter: exporter, logger: logger.Named("http.admin")}
}

// ListVendors returns every vendor with presence.
func (h *AdminHandler) ListVendors(c *gin.Context) {
	list, err := h.svc.Vendors(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendors": list})
}

// CreateVendor registers a vendor.
func (h *AdminHandler) CreateVendor(c *gin.Context) {
	var req vendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	vendor, err := h.svc.CreateVendor(c.Request.Context(), currentSession(c).Subject, req.profile())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, admin.VendorView{Vendor: vendor, Username: vendor.Username})
}

// UpdateVendor edits a vendor profile.
func (h *AdminHandler) UpdateVendor(c *gin.Context) {
	var req vendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	vendor, err := h.svc.UpdateVendor(c.Request.Context(), currentSession(c).Subject, c.Param("vendorId"), req.profile())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, admin.VendorView{Vendor: vendor, Username: vendor.Username})
}

// DeleteVendor removes a vendor.
func (h *AdminHandler) DeleteVendor(c *gin.Context) {
	if err := h.svc.DeleteVendor(c.Request.Context(), currentSession(c).Subject, c.Param("vendorId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Catalog lists all catalog fish including disabled ones.
func (h *AdminHandler) Catalog(c *gin.Context) {
	view, err := h.svc.Catalog(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddFish adds a catalog entry.
func (h *AdminHandler) AddFish(c *gin.Context) {
	var req fishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	fish, err := h.svc.AddFish(c.Request.Context(), currentSession(c).Subject, req.Name, req.Image)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, fish)
}

// UpdateFish renames or re-images a catalog entry. An empty name keeps the
// current one.
func (h *AdminHandler) UpdateFish(c *gin.Context) {
	var req fishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	current := c.Param("fishName")
	name := req.Name
	if name == "" {
		name = current
	}

	fish, err := h.svc.UpdateFish(c.Request.Context(), currentSession(c).Subject, current, name, req.Image)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, fish)
}

// DeleteFish removes a catalog entry.
func (h *AdminHandler) DeleteFish(c *gin.Context) {
	if err := h.svc.DeleteFish(c.Request.Context(), currentSession(c).Subject, c.Param("fishName")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DisableFish hides a fish from buyers.
func (h *AdminHandler) DisableFish(c *gin.Context) {
	h.setDisabled(c, true)
}

// EnableFish shows a fish to buyers again.
func (h *AdminHandler) EnableFish(c *gin.Context) {
	h.setDisabled(c, false)
}

func (h *AdminHandler) setDisabled(c *gin.Context, disabled bool) {
	name := c.Param("fishName")
	if err := h.svc.SetFishDisabled(c.Request.Context(), currentSession(c).Subject, name, disabled); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "disabled": disabled})
}

// Activity returns the global log.
func (h *AdminHandler) Activity(c *gin.Context) {
	entries, err := h.svc.Activity(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// ExportStock appends a stock snapshot to the report sheet now.
func (h *AdminHandler) ExportStock(c *gin.Context) {
	if h.exporter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "stock reports are not configured"})
		return
	}

	n, err := h.exporter.ExportStock(c.Request.Context())
	if err != nil {
		h.logger.Error("stock export failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to export stock report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exported": n})
}
