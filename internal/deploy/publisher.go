package deploy

import "context"

// Publisher uploads one HTML document and returns the public URL it is served from.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, html string) (string, error)
}
