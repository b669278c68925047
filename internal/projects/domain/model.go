package domain

import "time"

// VersionStatus is the lifecycle state of a single generated version.
type VersionStatus string

const (
	StatusGenerating VersionStatus = "generating"
	StatusCompleted  VersionStatus = "completed"
	StatusFailed     VersionStatus = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s VersionStatus) Valid() bool {
	switch s {
	case StatusGenerating, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Project is the root of a version lineage. OriginalPrompt never changes after creation.
type Project struct {
	ID              string    `json:"id"`
	OriginalPrompt  string    `json:"originalPrompt"`
	ActiveVersionID *string   `json:"activeVersionId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ProjectVersion is one generated site. Only GeneratedHTML, Status and IsActive
// change after insert.
type ProjectVersion struct {
	ID             string        `json:"id"`
	ProjectID      string        `json:"projectId"`
	VersionNumber  int           `json:"versionNumber"`
	Prompt         string        `json:"prompt"`
	RevisionPrompt *string       `json:"revisionPrompt"`
	GeneratedHTML  string        `json:"generatedHtml"`
	Status         VersionStatus `json:"status"`
	IsActive       bool          `json:"isActive"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// ProjectView is a project with its resolved active version and full history,
// newest version first.
type ProjectView struct {
	Project
	ActiveVersion *ProjectVersion  `json:"activeVersion"`
	Versions      []ProjectVersion `json:"versions"`
}

// VersionUpdate is a partial update; nil fields are left untouched.
type VersionUpdate struct {
	GeneratedHTML *string
	Status        *VersionStatus
}

// Completed returns the update that finishes a successful generation.
func Completed(html string) VersionUpdate {
	s := StatusCompleted
	return VersionUpdate{GeneratedHTML: &html, Status: &s}
}

// Failed returns the update that marks a generation as failed.
func Failed() VersionUpdate {
	s := StatusFailed
	return VersionUpdate{Status: &s}
}

// NewView resolves the active version of p from versions (sorted newest first).
// The flagged version wins; otherwise the highest version number is used.
// fellBack reports whether the fallback was needed.
func NewView(p Project, versions []ProjectVersion) (view ProjectView, fellBack bool) {
	view = ProjectView{Project: p, Versions: versions}
	if view.Versions == nil {
		view.Versions = []ProjectVersion{}
	}
	for i := range view.Versions {
		if view.Versions[i].IsActive {
			view.ActiveVersion = &view.Versions[i]
			return view, false
		}
	}
	var best *ProjectVersion
	for i := range view.Versions {
		if best == nil || view.Versions[i].VersionNumber > best.VersionNumber {
			best = &view.Versions[i]
		}
	}
	view.ActiveVersion = best
	return view, best != nil
}
