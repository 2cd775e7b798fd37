package public

import "github.com/3syncai/affiliate-portal-sub001/internal/provider"

// Handler serves the webhook and affiliate portal APIs.
type Handler struct {
	*provider.Container
}

// New creates the public handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
