package bootstrap

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-sitegen-backend/config"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/deploy"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/generation"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/projects/repository"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/projects/service"
)

// App is the wired API process.
type App struct {
	Router    *gin.Engine
	Store     repository.Store
	Projects  *service.ProjectService
	Generator *generation.Orchestrator
	Deployer  *deploy.Deployer

	limiter *middleware.RateLimiter
	stop    chan struct{}
	closers []func() error
}

// Build opens every dependency named by cfg. On error, whatever was opened
// is released.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (app *App, err error) {
	app = &App{stop: make(chan struct{})}
	defer func() {
		if err != nil {
			_ = app.Close()
			app = nil
		}
	}()

	store, closeStore, err := OpenStore(ctx, &cfg.Database, log)
	if err != nil {
		return app, err
	}
	app.closers = append(app.closers, closeStore)

	broker, closeEvents, err := OpenEvents(ctx, &cfg.Redis, log)
	if err != nil {
		return app, err
	}
	app.closers = append(app.closers, closeEvents)

	gen, err := NewGenerator(&cfg.Generation, log)
	if err != nil {
		return app, err
	}
	templates, err := NewTemplates(&cfg.Generation)
	if err != nil {
		return app, err
	}
	pub, err := NewPublisher(ctx, &cfg.Deploy)
	if err != nil {
		return app, err
	}

	app.Store = store
	app.Projects = service.NewProjectService(store,
		service.WithEvents(broker),
		service.WithLogger(log.Named("projects")),
		service.WithLineage(domain.ParseLineage(cfg.Generation.PromptLineage)),
	)
	app.Generator = generation.NewOrchestrator(app.Projects, gen,
		generation.WithTemplates(templates),
		generation.WithTimeout(cfg.Generation.Timeout),
		generation.WithOrchestratorLogger(log.Named("generation")),
	)
	app.Deployer = deploy.NewDeployer(app.Projects, pub, log.Named("deploy"))

	if cfg.RateLimit.Enabled {
		app.limiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		go app.limiter.Run(time.Minute, app.stop)
	}

	app.Router = BuildRouter(RouterDeps{
		ServiceName: cfg.App.ServiceName,
		Version:     cfg.App.Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		Log:         log,
		Store:       store,
		Generator:   app.Generator,
		Projects:    app.Projects,
		Deployer:    app.Deployer,
		Events:      broker,
		RateLimiter: app.limiter,
	})

	log.Info("application wired",
		zap.String("store", cfg.Database.Driver),
		zap.String("generator", gen.Name()),
		zap.String("deploy_target", pub.Name()),
		zap.String("prompt_lineage", cfg.Generation.PromptLineage),
	)
	return app, nil
}

// Close releases dependencies in reverse order of opening.
func (a *App) Close() error {
	select {
	case <-a.stop:
	default:
		close(a.stop)
	}

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
