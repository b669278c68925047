package deploy

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/logger"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/metrics"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/projects/domain"
)

// ErrNoContentToPublish is returned before any network call when the
// selected version has no HTML.
var ErrNoContentToPublish = errors.New("no HTML content to deploy")

// PublishError carries a publisher failure. Its message is the publisher's
// message, unchanged.
type PublishError struct {
	Target string
	Err    error
}

func (e *PublishError) Error() string { return e.Err.Error() }

func (e *PublishError) Unwrap() error { return e.Err }

// ProjectReader resolves projects and their versions.
type ProjectReader interface {
	GetProject(ctx context.Context, id string) (*domain.ProjectView, error)
}

type Deployment struct {
	URL           string
	ProjectID     string
	VersionID     string
	VersionNumber int
}

// Deployer publishes one version of a project. It makes exactly one publish
// attempt per call.
type Deployer struct {
	projects ProjectReader
	pub      Publisher
	log      *zap.Logger
}

func NewDeployer(projects ProjectReader, pub Publisher, log *zap.Logger) *Deployer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Deployer{projects: projects, pub: pub, log: log}
}

// Deploy publishes versionID, or the active version when versionID is empty.
func (d *Deployer) Deploy(ctx context.Context, projectID, versionID string) (*Deployment, error) {
	view, err := d.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var v *domain.ProjectVersion
	if versionID != "" {
		for i := range view.Versions {
			if view.Versions[i].ID == versionID {
				v = &view.Versions[i]
				break
			}
		}
		if v == nil {
			return nil, domain.ErrVersionNotFound
		}
	} else {
		v = view.ActiveVersion
	}
	if v == nil || strings.TrimSpace(v.GeneratedHTML) == "" {
		return nil, ErrNoContentToPublish
	}

	target := d.pub.Name()
	log := logger.For(ctx, d.log).With(
		zap.String("project_id", projectID),
		zap.String("version_id", v.ID),
		zap.Int("version_number", v.VersionNumber),
		zap.String("target", target),
	)

	start := time.Now()
	url, err := d.pub.Publish(ctx, v.GeneratedHTML)
	metrics.DeploymentDuration.WithLabelValues(target).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DeploymentsTotal.WithLabelValues(target, "error").Inc()
		log.Error("deployment failed", zap.Error(err))
		return nil, &PublishError{Target: target, Err: err}
	}

	metrics.DeploymentsTotal.WithLabelValues(target, "success").Inc()
	log.Info("deployment completed", zap.String("url", url))

	return &Deployment{
		URL:           url,
		ProjectID:     projectID,
		VersionID:     v.ID,
		VersionNumber: v.VersionNumber,
	}, nil
}
