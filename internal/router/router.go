package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/amante/clinic-booking-api/internal/handler"
	authhandler "github.com/amante/clinic-booking-api/internal/handler/auth"
	bookinghandler "github.com/amante/clinic-booking-api/internal/handler/booking"
	providerhandler "github.com/amante/clinic-booking-api/internal/handler/provider"
	schedulehandler "github.com/amante/clinic-booking-api/internal/handler/schedule"
	"github.com/amante/clinic-booking-api/internal/middleware"
	"github.com/amante/clinic-booking-api/internal/model"
)

type Config struct {
	RateLimit        rate.Limit
	RateBurst        int
	RateLimitEnabled bool
	CORS             middleware.CORSConfig
}

type Router struct {
	engine    *gin.Engine
	auth      *middleware.AuthMiddleware
	h         *handler.Handler
	authH     *authhandler.Handler
	providerH *providerhandler.Handler
	scheduleH *schedulehandler.Handler
	bookingH  *bookinghandler.Handler
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	h *handler.Handler,
	authH *authhandler.Handler,
	providerH *providerhandler.Handler,
	scheduleH *schedulehandler.Handler,
	bookingH *bookinghandler.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
	)
	engine.Use(middleware.CORS(config.CORS))

	if config.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(limiter.RateLimit())
	}

	return &Router{
		engine:    engine,
		auth:      auth,
		h:         h,
		authH:     authH,
		providerH: providerH,
		scheduleH: scheduleH,
		bookingH:  bookingH,
	}
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.setupHealthCheck(api)

	// Public routes
	r.authH.RegisterRoutes(api)
	r.providerH.RegisterPublicRoutes(api)
	r.scheduleH.RegisterPublicRoutes(api)

	// Protected routes
	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.bookingH.RegisterRoutes(protected)

	providerOnly := protected.Group("")
	providerOnly.Use(r.auth.RequireRole(model.RoleProvider))
	r.providerH.RegisterProtectedRoutes(providerOnly)
	r.scheduleH.RegisterProtectedRoutes(providerOnly)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
	}
	rg.GET("/metrics", r.h.MetricsHandler)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// ServerTimeouts are the defaults applied when the config leaves them zero.
func ServerTimeouts(read, write time.Duration) (time.Duration, time.Duration) {
	if read == 0 {
		read = 15 * time.Second
	}
	if write == 0 {
		write = 15 * time.Second
	}
	return read, write
}
