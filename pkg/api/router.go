package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/urmzd/homelink/pkg/api/handlers"
	"github.com/urmzd/homelink/pkg/device"
	"github.com/urmzd/homelink/pkg/fulfillment"
	"github.com/urmzd/homelink/pkg/homegraph"
	"github.com/urmzd/homelink/pkg/oauth"
)

// Server timeouts. There is no write timeout because /events holds its
// response open for as long as the client listens.
const (
	ReadHeaderTimeout = 10 * time.Second
	ReadTimeout       = 30 * time.Second
	IdleTimeout       = 120 * time.Second
)

// Services are the components the router exposes over HTTP
type Services struct {
	Registry   *device.Registry
	Store      *device.Store
	Executor   *device.Executor
	Dispatcher *fulfillment.Dispatcher
	Auth       *oauth.Engine
	Notifier   homegraph.Notifier
}

// Router holds the Gin engine and dependencies
type Router struct {
	engine *gin.Engine
	svc    Services
}

// NewRouter creates a new API router
func NewRouter(svc Services) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	SetupMiddleware(engine)
	engine.SetHTMLTemplate(oauth.LoginTemplate())

	router := &Router{
		engine: engine,
		svc:    svc,
	}

	router.setupRoutes()

	return router
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	// Swagger UI
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	healthHandler := handlers.NewHealthHandler(r.svc.Registry, r.svc.Notifier)
	eventsHandler := handlers.NewEventsHandler(r.svc.Store)
	r.engine.GET("/health", healthHandler.Health)
	r.engine.GET("/events", eventsHandler.Events)

	// Assistant platform endpoints
	fulfillmentHandler := handlers.NewFulfillmentHandler(r.svc.Dispatcher)
	r.engine.POST("/fulfillment", BearerSubject(r.svc.Auth.Secret()), fulfillmentHandler.Fulfill)

	authHandler := handlers.NewAuthHandler(r.svc.Auth)
	r.engine.GET("/login", authHandler.LoginPage)
	r.engine.POST("/login", authHandler.Login)
	r.engine.Any("/fakeauth", authHandler.Authorize)
	r.engine.Any("/faketoken", authHandler.Token)

	syncHandler := handlers.NewSyncHandler(r.svc.Dispatcher.AgentUserID(), r.svc.Store, r.svc.Notifier)
	r.engine.Any("/requestsync", syncHandler.RequestSync)
	r.engine.Any("/reportstate", syncHandler.ReportState)

	// API v1 routes
	v1 := r.engine.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)
		v1.GET("/events", eventsHandler.Events)

		devicesHandler := handlers.NewDevicesHandler(r.svc.Registry, r.svc.Store)
		controlHandler := handlers.NewControlHandler(r.svc.Store, r.svc.Executor)
		devices := v1.Group("/devices")
		{
			devices.GET("", devicesHandler.ListDevices)
			devices.GET("/:id", devicesHandler.GetDevice)

			// Device state control
			devices.GET("/:id/state", controlHandler.GetState)
			devices.POST("/:id/commands", controlHandler.RunCommand)
		}
	}
}

// Handler returns the router as an http.Handler
func (r *Router) Handler() http.Handler {
	return r.engine
}

// Server returns an http.Server for the router listening on addr.
func (r *Router) Server(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           r.engine,
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		IdleTimeout:       IdleTimeout,
	}
}
