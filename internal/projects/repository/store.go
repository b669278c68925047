package repository

import (
	"context"

	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/projects/domain"
)

// Store is the persistence contract for projects and their versions.
// Multi-step changes go through InTx; everything else is a single statement.
type Store interface {
	InsertProject(ctx context.Context, id, originalPrompt string) (*domain.Project, error)
	InsertVersion(ctx context.Context, v *domain.ProjectVersion) (*domain.ProjectVersion, error)
	// SetActiveVersion clears every flag of the project, sets the one on
	// versionID, and moves the project's pointer, in one atomic step.
	SetActiveVersion(ctx context.Context, projectID, versionID string) error
	UpdateVersionFields(ctx context.Context, versionID string, upd domain.VersionUpdate) (*domain.ProjectVersion, error)

	GetProject(ctx context.Context, id string) (*domain.Project, error)
	GetVersion(ctx context.Context, versionID string) (*domain.ProjectVersion, error)
	// ListVersions returns the project's versions, highest number first.
	ListVersions(ctx context.Context, projectID string) ([]domain.ProjectVersion, error)
	MaxVersionNumber(ctx context.Context, projectID string) (int, error)
	// ListProjects returns every project, newest first.
	ListProjects(ctx context.Context) ([]domain.Project, error)
	// ListAllVersions returns every version of every project, grouped by
	// project and highest number first within a project.
	ListAllVersions(ctx context.Context) ([]domain.ProjectVersion, error)

	// LockProject loads a project and holds it for the rest of the
	// surrounding transaction.
	LockProject(ctx context.Context, id string) (*domain.Project, error)
	DeleteProject(ctx context.Context, id string) (bool, error)
	CountProjects(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error

	// InTx runs fn against a transactional view of the store. Any error
	// returned by fn rolls every change back.
	InTx(ctx context.Context, fn func(Store) error) error
}
