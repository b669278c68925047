package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/projects/domain"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	constraintVersionNumber = "project_versions_number_key"
	constraintOneActive     = "project_versions_one_active_idx"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ProjectRepository provides persistence operations for projects and versions on PostgreSQL.
type ProjectRepository struct {
	db *sql.DB
	q  querier
	tx *sql.Tx
}

var _ Store = (*ProjectRepository)(nil)

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db, q: db}
}

// InTx runs fn inside a transaction. Calls made on an already transactional
// repository join the running transaction.
func (r *ProjectRepository) InTx(ctx context.Context, fn func(Store) error) error {
	return r.inTx(ctx, func(tr *ProjectRepository) error { return fn(tr) })
}

func (r *ProjectRepository) inTx(ctx context.Context, fn func(*ProjectRepository) error) error {
	if r.tx != nil {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&ProjectRepository{db: r.db, q: tx, tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *ProjectRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// InsertProject inserts a project without any version.
func (r *ProjectRepository) InsertProject(ctx context.Context, id, originalPrompt string) (*domain.Project, error) {
	const q = `
INSERT INTO projects (id, original_prompt)
VALUES ($1, $2)
RETURNING id, original_prompt, active_version_id, created_at, updated_at;
`
	p, err := scanProject(r.q.QueryRowContext(ctx, q, id, originalPrompt))
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, domain.ErrDuplicateID
		}
		return nil, err
	}
	return p, nil
}

// InsertVersion inserts v exactly as given; the caller decides number and flag.
func (r *ProjectRepository) InsertVersion(ctx context.Context, v *domain.ProjectVersion) (*domain.ProjectVersion, error) {
	const q = `
INSERT INTO project_versions (
  id, project_id, version_number, prompt, revision_prompt,
  generated_html, status, is_active
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, project_id, version_number, prompt, revision_prompt,
          generated_html, status, is_active, created_at, updated_at;
`
	out, err := scanVersion(r.q.QueryRowContext(ctx, q,
		v.ID, v.ProjectID, v.VersionNumber, v.Prompt, nullString(v.RevisionPrompt),
		v.GeneratedHTML, string(v.Status), v.IsActive,
	))
	if err != nil {
		return nil, mapVersionWriteError(err)
	}
	return out, nil
}

func mapVersionWriteError(err error) error {
	var pgErr *pq.Error
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgForeignKeyViolation:
		return domain.ErrProjectNotFound
	case pgUniqueViolation:
		switch pgErr.Constraint {
		case constraintVersionNumber:
			return domain.ErrDuplicateVersionNumber
		case constraintOneActive:
			return domain.ErrActiveConflict
		default:
			return domain.ErrDuplicateID
		}
	}
	return err
}

// SetActiveVersion moves the active flag and the project pointer in one transaction.
// The old flag is cleared first so the one-active index never sees two rows.
func (r *ProjectRepository) SetActiveVersion(ctx context.Context, projectID, versionID string) error {
	return r.inTx(ctx, func(tr *ProjectRepository) error {
		if _, err := tr.q.ExecContext(ctx, `
UPDATE project_versions
SET is_active = false
WHERE project_id = $1 AND is_active AND id <> $2;
`, projectID, versionID); err != nil {
			return err
		}

		res, err := tr.q.ExecContext(ctx, `
UPDATE project_versions
SET is_active = true
WHERE project_id = $1 AND id = $2;
`, projectID, versionID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrVersionNotFound
		}

		res, err = tr.q.ExecContext(ctx, `
UPDATE projects
SET active_version_id = $2,
    updated_at = now()
WHERE id = $1;
`, projectID, versionID)
		if err != nil {
			return err
		}
		if n, err = res.RowsAffected(); err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrProjectNotFound
		}
		return nil
	})
}

// UpdateVersionFields applies a partial update and always refreshes updated_at.
func (r *ProjectRepository) UpdateVersionFields(ctx context.Context, versionID string, upd domain.VersionUpdate) (*domain.ProjectVersion, error) {
	const q = `
UPDATE project_versions
SET generated_html = COALESCE($2, generated_html),
    status = COALESCE($3::version_status, status),
    updated_at = now()
WHERE id = $1
RETURNING id, project_id, version_number, prompt, revision_prompt,
          generated_html, status, is_active, created_at, updated_at;
`
	var status sql.NullString
	if upd.Status != nil {
		status = sql.NullString{String: string(*upd.Status), Valid: true}
	}

	v, err := scanVersion(r.q.QueryRowContext(ctx, q, versionID, nullString(upd.GeneratedHTML), status))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVersionNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *ProjectRepository) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	const q = `
SELECT id, original_prompt, active_version_id, created_at, updated_at
FROM projects
WHERE id = $1;
`
	return r.getProject(ctx, q, id)
}

// LockProject takes a row lock on the project; it only holds inside InTx.
func (r *ProjectRepository) LockProject(ctx context.Context, id string) (*domain.Project, error) {
	const q = `
SELECT id, original_prompt, active_version_id, created_at, updated_at
FROM projects
WHERE id = $1
FOR UPDATE;
`
	return r.getProject(ctx, q, id)
}

func (r *ProjectRepository) getProject(ctx context.Context, q, id string) (*domain.Project, error) {
	p, err := scanProject(r.q.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepository) GetVersion(ctx context.Context, versionID string) (*domain.ProjectVersion, error) {
	const q = `
SELECT id, project_id, version_number, prompt, revision_prompt,
       generated_html, status, is_active, created_at, updated_at
FROM project_versions
WHERE id = $1;
`
	v, err := scanVersion(r.q.QueryRowContext(ctx, q, versionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVersionNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *ProjectRepository) ListVersions(ctx context.Context, projectID string) ([]domain.ProjectVersion, error) {
	const q = `
SELECT id, project_id, version_number, prompt, revision_prompt,
       generated_html, status, is_active, created_at, updated_at
FROM project_versions
WHERE project_id = $1
ORDER BY version_number DESC;
`
	return r.listVersions(ctx, q, projectID)
}

func (r *ProjectRepository) ListAllVersions(ctx context.Context) ([]domain.ProjectVersion, error) {
	const q = `
SELECT id, project_id, version_number, prompt, revision_prompt,
       generated_html, status, is_active, created_at, updated_at
FROM project_versions
ORDER BY project_id, version_number DESC;
`
	return r.listVersions(ctx, q)
}

func (r *ProjectRepository) listVersions(ctx context.Context, q string, args ...any) ([]domain.ProjectVersion, error) {
	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ProjectVersion, 0, 8)
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProjectRepository) MaxVersionNumber(ctx context.Context, projectID string) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `
SELECT COALESCE(MAX(version_number), 0)
FROM project_versions
WHERE project_id = $1;
`, projectID).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *ProjectRepository) ListProjects(ctx context.Context) ([]domain.Project, error) {
	const q = `
SELECT id, original_prompt, active_version_id, created_at, updated_at
FROM projects
ORDER BY created_at DESC;
`
	rows, err := r.q.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteProject removes a project; its versions go with it through the cascade.
func (r *ProjectRepository) DeleteProject(ctx context.Context, id string) (bool, error) {
	result, err := r.q.ExecContext(ctx, `DELETE FROM projects WHERE id = $1;`, id)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

func (r *ProjectRepository) CountProjects(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects;`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *ProjectRepository) Clear(ctx context.Context) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM projects;`); err != nil {
		return fmt.Errorf("clear projects: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p      domain.Project
		active sql.NullString
	)
	if err := row.Scan(&p.ID, &p.OriginalPrompt, &active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if active.Valid {
		p.ActiveVersionID = &active.String
	}
	return &p, nil
}

func scanVersion(row rowScanner) (*domain.ProjectVersion, error) {
	var (
		v        domain.ProjectVersion
		revision sql.NullString
		status   string
	)
	err := row.Scan(
		&v.ID, &v.ProjectID, &v.VersionNumber, &v.Prompt, &revision,
		&v.GeneratedHTML, &status, &v.IsActive, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if revision.Valid {
		v.RevisionPrompt = &revision.String
	}
	v.Status = domain.VersionStatus(status)
	return &v, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
