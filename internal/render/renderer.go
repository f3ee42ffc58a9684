package render

import "context"

// Artifact is the opaque output of a render.
type Artifact struct {
	ContentType string
	Data        []byte
}

// Renderer turns a View into an artifact. Implementations must be
// deterministic over the View: the same input yields the same content.
type Renderer interface {
	Render(ctx context.Context, view View) (Artifact, error)
}
