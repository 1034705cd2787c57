// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"swiftdrop/internal/http/handlers"
	"swiftdrop/internal/http/middleware"
	gmaps "swiftdrop/internal/maps"
	"swiftdrop/internal/modules/dispatch"
	"swiftdrop/internal/modules/identity"
	"swiftdrop/internal/modules/order"
	"swiftdrop/internal/modules/pricing"
	"swiftdrop/internal/modules/proof"
)

type RouterDeps struct {
	Order    *order.Service
	Pricing  *pricing.Service
	Identity *identity.Service
	Pool     *dispatch.Pool
	Uploader proof.Uploader
	Places   *gmaps.PlacesService
	Route    *gmaps.RouteService
	Verifier middleware.TokenVerifier
	Log      *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log), middleware.Logging(deps.Log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	authHandler := handlers.NewAuthHandler(deps.Identity)
	r.POST("/api/auth/code", authHandler.SendCode)
	r.POST("/api/auth/verify", authHandler.VerifyCode)

	authed := r.Group("/api", middleware.Auth(deps.Verifier))

	orderHandler := handlers.NewOrderHandler(deps.Order)
	authed.POST("/orders", orderHandler.Create)
	authed.GET("/orders", orderHandler.List)
	authed.GET("/orders/:id", orderHandler.Get)
	authed.POST("/orders/:id/cancel", orderHandler.Cancel)

	driverHandler := handlers.NewDriverHandler(deps.Order, deps.Pool, deps.Uploader)
	authed.PUT("/drivers/availability", driverHandler.SetAvailability)
	authed.POST("/orders/:id/arrive", driverHandler.Arrive)
	authed.POST("/orders/:id/proofs", driverHandler.UploadProof)
	authed.POST("/orders/:id/pickup", driverHandler.ConfirmPickup)
	authed.POST("/orders/:id/transit", driverHandler.StartTransit)
	authed.POST("/orders/:id/complete", driverHandler.Complete)

	quoteHandler := handlers.NewQuoteHandler(deps.Pricing, deps.Places, deps.Route)
	authed.GET("/fare/estimate", quoteHandler.EstimateFare)
	authed.GET("/places/search", quoteHandler.SearchPlace)

	return r
}
