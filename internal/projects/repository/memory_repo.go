package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/projects/domain"
)

// MemoryRepository keeps projects in process memory. It is meant for local
// development and tests; everything is lost on restart.
type MemoryRepository struct {
	mu    *sync.Mutex
	state *memState
	now   func() time.Time
	inTx  bool
}

type memState struct {
	projects map[string]domain.Project
	versions map[string]domain.ProjectVersion
}

var _ Store = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		mu: &sync.Mutex{},
		state: &memState{
			projects: make(map[string]domain.Project),
			versions: make(map[string]domain.ProjectVersion),
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// lock is a no-op inside InTx, where the mutex is already held.
func (r *MemoryRepository) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (s *memState) clone() *memState {
	out := &memState{
		projects: make(map[string]domain.Project, len(s.projects)),
		versions: make(map[string]domain.ProjectVersion, len(s.versions)),
	}
	for k, v := range s.projects {
		out.projects[k] = v
	}
	for k, v := range s.versions {
		out.versions[k] = v
	}
	return out
}

// InTx serialises fn against every other caller and restores the previous
// state if fn fails or panics.
func (r *MemoryRepository) InTx(ctx context.Context, fn func(Store) error) error {
	if r.inTx {
		return fn(r)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := r.state.clone()
	committed := false
	defer func() {
		if !committed {
			*r.state = *snapshot
		}
	}()

	tx := &MemoryRepository{mu: r.mu, state: r.state, now: r.now, inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	committed = true
	return nil
}

func (r *MemoryRepository) Ping(ctx context.Context) error { return ctx.Err() }

func (r *MemoryRepository) InsertProject(_ context.Context, id, originalPrompt string) (*domain.Project, error) {
	defer r.lock()()

	if _, ok := r.state.projects[id]; ok {
		return nil, domain.ErrDuplicateID
	}
	now := r.now()
	p := domain.Project{ID: id, OriginalPrompt: originalPrompt, CreatedAt: now, UpdatedAt: now}
	r.state.projects[id] = p
	return &p, nil
}

func (r *MemoryRepository) InsertVersion(_ context.Context, v *domain.ProjectVersion) (*domain.ProjectVersion, error) {
	defer r.lock()()

	if _, ok := r.state.projects[v.ProjectID]; !ok {
		return nil, domain.ErrProjectNotFound
	}
	if _, ok := r.state.versions[v.ID]; ok {
		return nil, domain.ErrDuplicateID
	}
	for _, other := range r.state.versions {
		if other.ProjectID != v.ProjectID {
			continue
		}
		if other.VersionNumber == v.VersionNumber {
			return nil, domain.ErrDuplicateVersionNumber
		}
		if v.IsActive && other.IsActive {
			return nil, domain.ErrActiveConflict
		}
	}

	now := r.now()
	out := *v
	out.CreatedAt, out.UpdatedAt = now, now
	r.state.versions[out.ID] = out
	return &out, nil
}

func (r *MemoryRepository) SetActiveVersion(_ context.Context, projectID, versionID string) error {
	defer r.lock()()

	p, ok := r.state.projects[projectID]
	if !ok {
		return domain.ErrProjectNotFound
	}
	target, ok := r.state.versions[versionID]
	if !ok || target.ProjectID != projectID {
		return domain.ErrVersionNotFound
	}

	for id, v := range r.state.versions {
		if v.ProjectID != projectID {
			continue
		}
		v.IsActive = id == versionID
		r.state.versions[id] = v
	}
	p.ActiveVersionID = &target.ID
	p.UpdatedAt = r.now()
	r.state.projects[projectID] = p
	return nil
}

func (r *MemoryRepository) UpdateVersionFields(_ context.Context, versionID string, upd domain.VersionUpdate) (*domain.ProjectVersion, error) {
	defer r.lock()()

	v, ok := r.state.versions[versionID]
	if !ok {
		return nil, domain.ErrVersionNotFound
	}
	if upd.GeneratedHTML != nil {
		v.GeneratedHTML = *upd.GeneratedHTML
	}
	if upd.Status != nil {
		v.Status = *upd.Status
	}
	v.UpdatedAt = r.now()
	r.state.versions[versionID] = v
	return &v, nil
}

func (r *MemoryRepository) GetProject(_ context.Context, id string) (*domain.Project, error) {
	defer r.lock()()

	p, ok := r.state.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return &p, nil
}

func (r *MemoryRepository) LockProject(ctx context.Context, id string) (*domain.Project, error) {
	return r.GetProject(ctx, id)
}

func (r *MemoryRepository) GetVersion(_ context.Context, versionID string) (*domain.ProjectVersion, error) {
	defer r.lock()()

	v, ok := r.state.versions[versionID]
	if !ok {
		return nil, domain.ErrVersionNotFound
	}
	return &v, nil
}

func (r *MemoryRepository) ListVersions(_ context.Context, projectID string) ([]domain.ProjectVersion, error) {
	defer r.lock()()

	out := make([]domain.ProjectVersion, 0, 8)
	for _, v := range r.state.versions {
		if v.ProjectID == projectID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber > out[j].VersionNumber })
	return out, nil
}

func (r *MemoryRepository) ListAllVersions(_ context.Context) ([]domain.ProjectVersion, error) {
	defer r.lock()()

	out := make([]domain.ProjectVersion, 0, len(r.state.versions))
	for _, v := range r.state.versions {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProjectID != out[j].ProjectID {
			return out[i].ProjectID < out[j].ProjectID
		}
		return out[i].VersionNumber > out[j].VersionNumber
	})
	return out, nil
}

func (r *MemoryRepository) MaxVersionNumber(_ context.Context, projectID string) (int, error) {
	defer r.lock()()

	max := 0
	for _, v := range r.state.versions {
		if v.ProjectID == projectID && v.VersionNumber > max {
			max = v.VersionNumber
		}
	}
	return max, nil
}

func (r *MemoryRepository) ListProjects(_ context.Context) ([]domain.Project, error) {
	defer r.lock()()

	out := make([]domain.Project, 0, len(r.state.projects))
	for _, p := range r.state.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) DeleteProject(_ context.Context, id string) (bool, error) {
	defer r.lock()()

	if _, ok := r.state.projects[id]; !ok {
		return false, nil
	}
	delete(r.state.projects, id)
	for vid, v := range r.state.versions {
		if v.ProjectID == id {
			delete(r.state.versions, vid)
		}
	}
	return true, nil
}

func (r *MemoryRepository) CountProjects(_ context.Context) (int64, error) {
	defer r.lock()()
	return int64(len(r.state.projects)), nil
}

func (r *MemoryRepository) Clear(_ context.Context) error {
	defer r.lock()()

	r.state.projects = make(map[string]domain.Project)
	r.state.versions = make(map[string]domain.ProjectVersion)
	return nil
}
