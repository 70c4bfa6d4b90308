package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishtrace/internal/server/handlers"
	"github.com/mamadbah2/fishtrace/internal/service/auth"
)

// Handlers groups the HTTP adapters the router mounts.
type Handlers struct {
	Buyer  *handlers.BuyerHandler
	Auth   *handlers.AuthHandler
	Vendor *handlers.VendorHandler
	Admin  *handlers.AdminHandler
	Device *handlers.DeviceHandler
	Health *handlers.HealthHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, authn handlers.Authenticator, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", h.Health.Health)

	api := r.Group("/api")

	api.GET("/catalog", h.Buyer.Dashboard)
	api.GET("/catalog/:fishName", h.Buyer.Fish)
	api.GET("/stalls", h.Buyer.StallsAt)
	api.GET("/stalls/:vendorId", h.Buyer.Stall)

	authGroup := api.Group("/auth")
	authGroup.POST("/vendor/login", h.Auth.VendorLogin)
	authGroup.POST("/admin/login", h.Auth.AdminLogin)
	authGroup.POST("/logout", h.Auth.Logout)

	vendor := api.Group("/vendor", handlers.RequireRole(authn, auth.RoleVendor))
	vendor.POST("/heartbeat", h.Vendor.Heartbeat)
	vendor.GET("/stall", h.Vendor.Stall)
	vendor.PUT("/settings", h.Vendor.UpdateSettings)
	vendor.POST("/fish", h.Vendor.AddFish)
	vendor.DELETE("/fish/:fishName", h.Vendor.RemoveFish)
	vendor.PUT("/fish/:fishName/price", h.Vendor.UpdatePrice)
	vendor.GET("/activity", h.Vendor.Activity)
	vendor.POST("/session/start", h.Vendor.StartSession)
	vendor.POST("/session/end", h.Vendor.EndSession)
	vendor.GET("/catalog", h.Vendor.AddableCatalog)

	adm := api.Group("/admin", handlers.RequireRole(authn, auth.RoleAdmin))
	adm.GET("/vendors", h.Admin.ListVendors)
	adm.POST("/vendors", h.Admin.CreateVendor)
	adm.PUT("/vendors/:vendorId", h.Admin.UpdateVendor)
	adm.DELETE("/vendors/:vendorId", h.Admin.DeleteVendor)
	adm.GET("/catalog", h.Admin.Catalog)
	adm.POST("/catalog", h.Admin.AddFish)
	adm.PUT("/catalog/:fishName", h.Admin.UpdateFish)
	adm.DELETE("/catalog/:fishName", h.Admin.DeleteFish)
	adm.POST("/catalog/:fishName/disable", h.Admin.DisableFish)
	adm.POST("/catalog/:fishName/enable", h.Admin.EnableFish)
	adm.GET("/activity", h.Admin.Activity)
	adm.POST("/reports/stock", h.Admin.ExportStock)

	devices := api.Group("/devices", handlers.RequireDeviceKey(authn))
	devices.PUT("/vendors/:vendorId/stock/:fishName", h.Device.ReportQuantity)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
