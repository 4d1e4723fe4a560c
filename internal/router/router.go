package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/docbook/docbook-api/internal/handler/health"
	"github.com/docbook/docbook-api/internal/handler/prometheus"
	"github.com/docbook/docbook-api/internal/middleware"
)

// Handler registers a route group behind the shared auth middleware.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup, *middleware.AuthMiddleware)
}

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	userH   Handler
	doctorH Handler
	adminH  Handler
	healthH *health.Handler
	prom    *prometheus.Handler
}

type RouterConfig struct {
	RateLimit  rate.Limit
	RateBurst  int
	Timeout    time.Duration
	CORSConfig middleware.CORSConfig
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	userH Handler,
	doctorH Handler,
	adminH Handler,
	healthH *health.Handler,
	config RouterConfig,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	middleware.RegisterValidators()

	engine := gin.New()
	prom := prometheus.New()

	r := &Router{
		engine:  engine,
		auth:    auth,
		userH:   userH,
		doctorH: doctorH,
		adminH:  adminH,
		healthH: healthH,
		prom:    prom,
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		prom.Middleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.Timeout}),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api")

	r.healthH.RegisterRoutes(api)
	api.GET("/metrics", r.prom.Handler())

	r.userH.RegisterRoutes(api, r.auth)
	r.doctorH.RegisterRoutes(api, r.auth)
	r.adminH.RegisterRoutes(api, r.auth)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
