package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/logger"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/metrics"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/projects/domain"
)

// VersionService is the part of the project service the orchestrator drives.
type VersionService interface {
	CreateProject(ctx context.Context, id, prompt string) (*domain.ProjectView, error)
	CreateRevision(ctx context.Context, projectID, revisionPrompt, baseVersionID string) (*domain.ProjectVersion, error)
	GetVersion(ctx context.Context, projectID, versionID string) (*domain.ProjectVersion, error)
	UpdateVersion(ctx context.Context, versionID string, upd domain.VersionUpdate) (*domain.ProjectVersion, error)
}

// GenerationError reports a generation that failed after its version row
// was created. The row has been marked failed.
type GenerationError struct {
	ProjectID string
	VersionID string
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation of version %s failed: %v", e.VersionID, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Result is a finished generation.
type Result struct {
	ProjectID string
	Version   *domain.ProjectVersion
	Outcome   OutcomeKind
}

type Orchestrator struct {
	versions     VersionService
	gen          Generator
	templates    *Templates
	log          *zap.Logger
	timeout      time.Duration
	newProjectID func() string
}

type OrchestratorOption func(*Orchestrator)

func WithTemplates(t *Templates) OrchestratorOption {
	return func(o *Orchestrator) {
		if t != nil {
			o.templates = t
		}
	}
}

func WithTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) { o.timeout = d }
}

func WithOrchestratorLogger(l *zap.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

func WithProjectIDGenerator(fn func() string) OrchestratorOption {
	return func(o *Orchestrator) { o.newProjectID = fn }
}

func NewOrchestrator(versions VersionService, gen Generator, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		versions:     versions,
		gen:          gen,
		templates:    DefaultTemplates(),
		log:          zap.NewNop(),
		newProjectID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate creates a project and produces its first version.
func (o *Orchestrator) Generate(ctx context.Context, prompt string) (*Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required and must be a non-empty string", domain.ErrInvalidInput)
	}

	view, err := o.versions.CreateProject(ctx, o.newProjectID(), prompt)
	if err != nil {
		return nil, err
	}
	v := view.ActiveVersion

	instructions, err := o.templates.Initial(InitialInput{Prompt: prompt})
	if err != nil {
		return nil, o.fail(ctx, v, err)
	}
	return o.complete(ctx, v, "initial", instructions, TitleGenerated)
}

// Revise appends a version to projectID derived from baseVersionID and
// produces its content. The new version is active before generation starts.
func (o *Orchestrator) Revise(ctx context.Context, projectID, revisionPrompt, baseVersionID string) (*Result, error) {
	revisionPrompt = strings.TrimSpace(revisionPrompt)
	if revisionPrompt == "" {
		return nil, fmt.Errorf("%w: revision prompt must be a non-empty string", domain.ErrInvalidInput)
	}

	v, err := o.versions.CreateRevision(ctx, projectID, revisionPrompt, baseVersionID)
	if err != nil {
		return nil, err
	}

	base, err := o.versions.GetVersion(ctx, projectID, baseVersionID)
	if err != nil {
		return nil, o.fail(ctx, v, err)
	}

	instructions, err := o.templates.Revision(RevisionInput{
		BaseHTML:       base.GeneratedHTML,
		RevisionPrompt: revisionPrompt,
	})
	if err != nil {
		return nil, o.fail(ctx, v, err)
	}
	return o.complete(ctx, v, "revision", instructions, TitleRevised)
}

func (o *Orchestrator) complete(ctx context.Context, v *domain.ProjectVersion, kind, instructions, title string) (*Result, error) {
	provider := o.gen.Name()
	log := logger.For(ctx, o.log).With(
		zap.String("project_id", v.ProjectID),
		zap.String("version_id", v.ID),
		zap.Int("version_number", v.VersionNumber),
		zap.String("provider", provider),
		zap.String("kind", kind),
	)

	genCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := Collect(genCtx, o.gen, instructions)
	metrics.GenerationDuration.WithLabelValues(provider, kind).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(provider, kind, "error").Inc()
		log.Error("generation failed", zap.Error(err))
		return nil, o.fail(ctx, v, err)
	}

	out := Finalize(raw, title)
	if out.Kind == OutcomeWrappedFallback {
		metrics.GenerationFallbacks.WithLabelValues(provider).Inc()
		log.Warn("model output had no html document, wrapped in fallback page")
	}

	updated, err := o.versions.UpdateVersion(context.WithoutCancel(ctx), v.ID, domain.Completed(out.HTML))
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(provider, kind, "error").Inc()
		log.Error("failed to store generated html", zap.Error(err))
		return nil, o.fail(ctx, v, err)
	}

	metrics.GenerationsTotal.WithLabelValues(provider, kind, out.Kind.String()).Inc()
	metrics.GenerationOutputBytes.WithLabelValues(provider).Observe(float64(len(out.HTML)))
	log.Info("generation completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("html_bytes", len(out.HTML)),
		zap.String("outcome", out.Kind.String()),
	)

	return &Result{ProjectID: v.ProjectID, Version: updated, Outcome: out.Kind}, nil
}

// fail marks v failed, even if the request context is already gone, and
// wraps cause for the caller.
func (o *Orchestrator) fail(ctx context.Context, v *domain.ProjectVersion, cause error) error {
	if _, err := o.versions.UpdateVersion(context.WithoutCancel(ctx), v.ID, domain.Failed()); err != nil {
		logger.For(ctx, o.log).Error("failed to mark version as failed",
			zap.String("version_id", v.ID),
			zap.Error(err),
		)
	}
	return &GenerationError{ProjectID: v.ProjectID, VersionID: v.ID, Err: cause}
}
