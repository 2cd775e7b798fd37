package admin

import "github.com/3syncai/affiliate-portal-sub001/internal/provider"

// Handler serves the back-office management APIs.
type Handler struct {
	*provider.Container
}

// New creates the admin handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
