package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/events"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/logger"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/projects/repository"
)

// ProjectService owns the version lineage: version numbering, prompt
// composition and every move of the active pointer happen here.
type ProjectService struct {
	store   repository.Store
	events  events.Publisher
	log     *zap.Logger
	lineage domain.PromptLineage
	newID   func() string
}

type Option func(*ProjectService)

func WithEvents(p events.Publisher) Option {
	return func(s *ProjectService) {
		if p != nil {
			s.events = p
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *ProjectService) {
		if l != nil {
			s.log = l
		}
	}
}

func WithLineage(l domain.PromptLineage) Option {
	return func(s *ProjectService) { s.lineage = l }
}

// WithIDGenerator replaces the uuid generator used for new versions.
func WithIDGenerator(fn func() string) Option {
	return func(s *ProjectService) { s.newID = fn }
}

// NewProjectService creates a new project service
func NewProjectService(store repository.Store, opts ...Option) *ProjectService {
	s := &ProjectService{
		store:   store,
		events:  events.Nop{},
		log:     zap.NewNop(),
		lineage: domain.LineageOriginal,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateProject stores a project together with its first version, which
// starts active, empty and generating. Nothing is kept if any step fails.
func (s *ProjectService) CreateProject(ctx context.Context, id, prompt string) (*domain.ProjectView, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: project id required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: prompt required", domain.ErrInvalidInput)
	}

	var view domain.ProjectView
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		p, err := tx.InsertProject(ctx, id, prompt)
		if err != nil {
			return err
		}
		v, err := tx.InsertVersion(ctx, &domain.ProjectVersion{
			ID:            s.newID(),
			ProjectID:     p.ID,
			VersionNumber: 1,
			Prompt:        prompt,
			Status:        domain.StatusGenerating,
			IsActive:      true,
		})
		if err != nil {
			return err
		}
		if err := tx.SetActiveVersion(ctx, p.ID, v.ID); err != nil {
			return err
		}
		p.ActiveVersionID = &v.ID
		view, _ = domain.NewView(*p, []domain.ProjectVersion{*v})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.VersionCreated, view.ActiveVersion)
	return &view, nil
}

// GetProject returns the project with its full history and resolved active version.
func (s *ProjectService) GetProject(ctx context.Context, id string) (*domain.ProjectView, error) {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	versions, err := s.store.ListVersions(ctx, id)
	if err != nil {
		return nil, err
	}

	view, fellBack := domain.NewView(*p, versions)
	if fellBack {
		logger.For(ctx, s.log).Warn("project has no flagged active version, using highest number",
			zap.String("project_id", id),
			zap.String("version_id", view.ActiveVersion.ID),
		)
	}
	return &view, nil
}

// GetVersion returns a version only if it belongs to projectID.
func (s *ProjectService) GetVersion(ctx context.Context, projectID, versionID string) (*domain.ProjectVersion, error) {
	v, err := s.store.GetVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if v.ProjectID != projectID {
		return nil, domain.ErrVersionNotFound
	}
	return v, nil
}

// UpdateVersion applies a partial update to one version.
func (s *ProjectService) UpdateVersion(ctx context.Context, versionID string, upd domain.VersionUpdate) (*domain.ProjectVersion, error) {
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, *upd.Status)
	}

	v, err := s.store.UpdateVersionFields(ctx, versionID, upd)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.VersionUpdated, v)
	return v, nil
}

// CreateRevision appends a new generating version derived from baseVersionID
// and makes it the active one. The base version is never modified.
func (s *ProjectService) CreateRevision(ctx context.Context, projectID, revisionPrompt, baseVersionID string) (*domain.ProjectVersion, error) {
	return s.CreateRevisionWithID(ctx, projectID, "", revisionPrompt, baseVersionID)
}

// CreateRevisionWithID is CreateRevision with a caller-chosen id for the new
// version. An empty newVersionID falls back to the id generator.
func (s *ProjectService) CreateRevisionWithID(ctx context.Context, projectID, newVersionID, revisionPrompt, baseVersionID string) (*domain.ProjectVersion, error) {
	if strings.TrimSpace(revisionPrompt) == "" {
		return nil, fmt.Errorf("%w: revision prompt required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(newVersionID) == "" {
		newVersionID = s.newID()
	}

	var created *domain.ProjectVersion
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		p, err := tx.LockProject(ctx, projectID)
		if err != nil {
			return err
		}

		base, err := tx.GetVersion(ctx, baseVersionID)
		if errors.Is(err, domain.ErrVersionNotFound) || (err == nil && base.ProjectID != projectID) {
			return domain.ErrBaseVersionNotFound
		}
		if err != nil {
			return err
		}

		highest, err := tx.MaxVersionNumber(ctx, projectID)
		if err != nil {
			return err
		}

		rp := revisionPrompt
		v, err := tx.InsertVersion(ctx, &domain.ProjectVersion{
			ID:             newVersionID,
			ProjectID:      projectID,
			VersionNumber:  highest + 1,
			Prompt:         s.lineage.RevisionPrompt(*p, *base, revisionPrompt),
			RevisionPrompt: &rp,
			Status:         domain.StatusGenerating,
		})
		if err != nil {
			return err
		}
		if err := tx.SetActiveVersion(ctx, projectID, v.ID); err != nil {
			return err
		}
		v.IsActive = true
		created = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.VersionCreated, created)
	return created, nil
}

// SwitchVersion makes versionID the active version. It only moves the
// pointer; switching to the current active version is a no-op success.
func (s *ProjectService) SwitchVersion(ctx context.Context, projectID, versionID string) (*domain.ProjectVersion, error) {
	var target *domain.ProjectVersion
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := tx.LockProject(ctx, projectID); err != nil {
			return err
		}
		v, err := tx.GetVersion(ctx, versionID)
		if err != nil {
			return err
		}
		if v.ProjectID != projectID {
			return domain.ErrVersionNotFound
		}
		if err := tx.SetActiveVersion(ctx, projectID, versionID); err != nil {
			return err
		}
		v.IsActive = true
		target = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.VersionActivated, target)
	return target, nil
}

// ListAll returns every project with its history using two queries in total.
func (s *ProjectService) ListAll(ctx context.Context) ([]domain.ProjectView, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	versions, err := s.store.ListAllVersions(ctx)
	if err != nil {
		return nil, err
	}

	byProject := make(map[string][]domain.ProjectVersion, len(projects))
	for _, v := range versions {
		byProject[v.ProjectID] = append(byProject[v.ProjectID], v)
	}

	out := make([]domain.ProjectView, 0, len(projects))
	for _, p := range projects {
		view, _ := domain.NewView(p, byProject[p.ID])
		out = append(out, view)
	}
	return out, nil
}

// DeleteProject removes a project and all of its versions.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) (bool, error) {
	ok, err := s.store.DeleteProject(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	s.emit(ctx, events.VersionEvent{Type: events.ProjectDeleted, ProjectID: id})
	return true, nil
}

func (s *ProjectService) Count(ctx context.Context) (int64, error) {
	return s.store.CountProjects(ctx)
}

// Clear deletes every project. Intended for development databases.
func (s *ProjectService) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}

func (s *ProjectService) publish(ctx context.Context, typ events.Type, v *domain.ProjectVersion) {
	if v == nil {
		return
	}
	s.emit(ctx, events.VersionEvent{
		Type:          typ,
		ProjectID:     v.ProjectID,
		VersionID:     v.ID,
		VersionNumber: v.VersionNumber,
		Status:        string(v.Status),
	})
}

// emit never fails the caller; the change is already committed.
func (s *ProjectService) emit(ctx context.Context, evt events.VersionEvent) {
	evt.At = time.Now().UTC()
	if err := s.events.Publish(ctx, evt); err != nil {
		logger.For(ctx, s.log).Warn("failed to publish version event",
			zap.String("type", string(evt.Type)),
			zap.String("project_id", evt.ProjectID),
			zap.Error(err),
		)
	}
}
