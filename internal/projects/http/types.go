package http

import (
	"context"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/deploy"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/events"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/generation"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/projects/domain"
)

// Generator runs the model-backed operations.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*generation.Result, error)
	Revise(ctx context.Context, projectID, revisionPrompt, baseVersionID string) (*generation.Result, error)
}

// Projects is the read/switch/delete side of the project service.
type Projects interface {
	GetProject(ctx context.Context, id string) (*domain.ProjectView, error)
	SwitchVersion(ctx context.Context, projectID, versionID string) (*domain.ProjectVersion, error)
	ListAll(ctx context.Context) ([]domain.ProjectView, error)
	DeleteProject(ctx context.Context, id string) (bool, error)
}

type Deployer interface {
	Deploy(ctx context.Context, projectID, versionID string) (*deploy.Deployment, error)
}

type Subscriber interface {
	Subscribe(ctx context.Context, projectID string) (<-chan events.VersionEvent, func(), error)
}

// Handler bundles the dependencies for site generation endpoints.
type Handler struct {
	gen      Generator
	projects Projects
	deployer Deployer
	events   Subscriber
	log      *zap.Logger
}

func New(gen Generator, projects Projects, deployer Deployer, events Subscriber, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{gen: gen, projects: projects, deployer: deployer, events: events, log: log}
}

type generateReq struct {
	Prompt string `json:"prompt"`
}

type reviseReq struct {
	ProjectID      string `json:"projectId"`
	RevisionPrompt string `json:"revisionPrompt"`
	BaseVersionID  string `json:"baseVersionId"`
}

type switchReq struct {
	ProjectID string `json:"projectId"`
	VersionID string `json:"versionId"`
}

type deployReq struct {
	ProjectID string `json:"projectId"`
	VersionID string `json:"versionId"`
}
