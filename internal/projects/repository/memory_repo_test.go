package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/projects/domain"
)

func seedMemory(t *testing.T) *MemoryRepository {
	t.Helper()
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.InsertProject(ctx, "p1", "a bakery site")
	require.NoError(t, err)
	for n, id := range []string{"v1", "v2"} {
		_, err := repo.InsertVersion(ctx, &domain.ProjectVersion{
			ID: id, ProjectID: "p1", VersionNumber: n + 1, Prompt: "a bakery site",
			Status: domain.StatusCompleted, IsActive: n == 0,
		})
		require.NoError(t, err)
	}
	require.NoError(t, repo.SetActiveVersion(ctx, "p1", "v1"))
	return repo
}

func TestMemoryRepository_InsertConstraints(t *testing.T) {
	ctx := context.Background()
	repo := seedMemory(t)

	_, err := repo.InsertProject(ctx, "p1", "again")
	assert.ErrorIs(t, err, domain.ErrDuplicateID)

	_, err = repo.InsertVersion(ctx, &domain.ProjectVersion{ID: "vx", ProjectID: "missing", VersionNumber: 1})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	_, err = repo.InsertVersion(ctx, &domain.ProjectVersion{ID: "v3", ProjectID: "p1", VersionNumber: 2})
	assert.ErrorIs(t, err, domain.ErrDuplicateVersionNumber)

	_, err = repo.InsertVersion(ctx, &domain.ProjectVersion{ID: "v1", ProjectID: "p1", VersionNumber: 9})
	assert.ErrorIs(t, err, domain.ErrDuplicateID)

	_, err = repo.InsertVersion(ctx, &domain.ProjectVersion{ID: "v3", ProjectID: "p1", VersionNumber: 3, IsActive: true})
	assert.ErrorIs(t, err, domain.ErrActiveConflict)
}

func TestMemoryRepository_SetActiveVersion(t *testing.T) {
	ctx := context.Background()
	repo := seedMemory(t)

	require.NoError(t, repo.SetActiveVersion(ctx, "p1", "v2"))

	versions, err := repo.ListVersions(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "v2", versions[0].ID)
	assert.True(t, versions[0].IsActive)
	assert.False(t, versions[1].IsActive)

	p, err := repo.GetProject(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, p.ActiveVersionID)
	assert.Equal(t, "v2", *p.ActiveVersionID)

	assert.ErrorIs(t, repo.SetActiveVersion(ctx, "p1", "nope"), domain.ErrVersionNotFound)
	assert.ErrorIs(t, repo.SetActiveVersion(ctx, "nope", "v1"), domain.ErrProjectNotFound)
}

func TestMemoryRepository_InTxRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := seedMemory(t)

	boom := errors.New("boom")
	err := repo.InTx(ctx, func(s Store) error {
		if _, err := s.InsertVersion(ctx, &domain.ProjectVersion{ID: "v3", ProjectID: "p1", VersionNumber: 3}); err != nil {
			return err
		}
		if err := s.SetActiveVersion(ctx, "p1", "v3"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.GetVersion(ctx, "v3")
	assert.ErrorIs(t, err, domain.ErrVersionNotFound)

	p, err := repo.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "v1", *p.ActiveVersionID)

	max, err := repo.MaxVersionNumber(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, max)
}

func TestMemoryRepository_InTxRollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	repo := seedMemory(t)

	assert.Panics(t, func() {
		_ = repo.InTx(ctx, func(s Store) error {
			if _, err := s.InsertVersion(ctx, &domain.ProjectVersion{ID: "v3", ProjectID: "p1", VersionNumber: 3}); err != nil {
				return err
			}
			if err := s.SetActiveVersion(ctx, "p1", "v3"); err != nil {
				return err
			}
			panic("handler blew up")
		})
	})

	// the lock is released and nothing of the aborted change is visible
	_, err := repo.GetVersion(ctx, "v3")
	assert.ErrorIs(t, err, domain.ErrVersionNotFound)

	v1, err := repo.GetVersion(ctx, "v1")
	require.NoError(t, err)
	assert.True(t, v1.IsActive)

	p, err := repo.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "v1", *p.ActiveVersionID)
}

func TestMemoryRepository_UpdateVersionFields(t *testing.T) {
	ctx := context.Background()
	repo := seedMemory(t)

	before, err := repo.GetVersion(ctx, "v1")
	require.NoError(t, err)

	v, err := repo.UpdateVersionFields(ctx, "v1", domain.Failed())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, v.Status)
	assert.Equal(t, before.GeneratedHTML, v.GeneratedHTML)
	assert.False(t, v.UpdatedAt.Before(before.UpdatedAt))

	_, err = repo.UpdateVersionFields(ctx, "nope", domain.Failed())
	assert.ErrorIs(t, err, domain.ErrVersionNotFound)
}

func TestMemoryRepository_DeleteCascadesAndClear(t *testing.T) {
	ctx := context.Background()
	repo := seedMemory(t)

	_, err := repo.InsertProject(ctx, "p2", "a portfolio")
	require.NoError(t, err)

	n, err := repo.CountProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	ok, err := repo.DeleteProject(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, ok)

	all, err := repo.ListAllVersions(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	ok, err = repo.DeleteProject(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Clear(ctx))
	n, err = repo.CountProjects(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
