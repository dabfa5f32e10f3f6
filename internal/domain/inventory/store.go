package inventory

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("inventory record not found")

// Store holds hardware records scoped by organization.
type Store interface {
	CreateHardware(ctx context.Context, h *Hardware) error
	ListHardware(ctx context.Context, organizationID string) ([]Hardware, error)
	DeleteHardware(ctx context.Context, organizationID, id string) error
}
