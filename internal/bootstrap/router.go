package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httpapi "github.com/GoSim-25-26J-441/go-sitegen-backend/internal/api/http"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/api/http/middleware"
	projectshttp "github.com/GoSim-25-26J-441/go-sitegen-backend/internal/projects/http"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins []string
	Log         *zap.Logger

	Store       httpapi.Pinger
	Generator   projectshttp.Generator
	Projects    projectshttp.Projects
	Deployer    projectshttp.Deployer
	Events      projectshttp.Subscriber
	RateLimiter *middleware.RateLimiter
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	if dep.Log == nil {
		dep.Log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ZapLogger(dep.Log))
	r.Use(middleware.Prometheus())
	r.Use(cors.New(corsConfig(dep.CORSOrigins)))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Store)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var limit gin.HandlerFunc
	if dep.RateLimiter != nil {
		limit = middleware.RateLimitByIP(dep.RateLimiter)
	}

	sites := projectshttp.New(dep.Generator, dep.Projects, dep.Deployer, dep.Events, dep.Log.Named("http"))
	sites.Register(r, limit)
	sites.Register(r.Group("/api"), limit)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}
