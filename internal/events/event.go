package events

import (
	"context"
	"time"
)

// Type names a change to a project or one of its versions.
type Type string

const (
	VersionCreated   Type = "version.created"
	VersionUpdated   Type = "version.updated"
	VersionActivated Type = "version.activated"
	ProjectDeleted   Type = "project.deleted"
)

// VersionEvent is what subscribers of a project receive.
type VersionEvent struct {
	Type          Type      `json:"type"`
	ProjectID     string    `json:"projectId"`
	VersionID     string    `json:"versionId,omitempty"`
	VersionNumber int       `json:"versionNumber,omitempty"`
	Status        string    `json:"status,omitempty"`
	At            time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, evt VersionEvent) error
}

// Broker fans events out to per-project subscribers. The returned cancel
// func releases the subscription and closes the channel.
type Broker interface {
	Publisher
	Subscribe(ctx context.Context, projectID string) (<-chan VersionEvent, func(), error)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, VersionEvent) error { return nil }
