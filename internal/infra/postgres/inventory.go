package postgres

import (
	"context"
	"fmt"
	"time"

	"asset-manager-api/internal/domain/inventory"
	"asset-manager-api/internal/domain/users"

	"github.com/google/uuid"
)

func modelFor(c inventory.Collection) (any, error) {
	switch c {
	case inventory.CollectionHardware:
		return &inventory.Hardware{}, nil
	case inventory.CollectionSoftware:
		return &inventory.Software{}, nil
	case inventory.CollectionUsers:
		return &users.User{}, nil
	case inventory.CollectionTickets:
		return &inventory.Ticket{}, nil
	case inventory.CollectionTelemetry:
		return &inventory.Telemetry{}, nil
	default:
		return nil, fmt.Errorf("unknown collection %q", c)
	}
}

func (s *Store) Count(ctx context.Context, organizationID string, c inventory.Collection) (int64, error) {
	model, err := modelFor(c)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(model).Where("organization_id = ?", organizationID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", c, err)
	}
	return n, nil
}

func (s *Store) CreateHardware(ctx context.Context, h *inventory.Hardware) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	h.CreatedAt, h.UpdatedAt = now, now
	if err := s.db.WithContext(ctx).Create(h).Error; err != nil {
		return fmt.Errorf("create hardware: %w", err)
	}
	return nil
}

func (s *Store) ListHardware(ctx context.Context, organizationID string) ([]inventory.Hardware, error) {
	var items []inventory.Hardware
	if err := s.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list hardware: %w", err)
	}
	return items, nil
}

func (s *Store) DeleteHardware(ctx context.Context, organizationID, id string) error {
	res := s.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		Delete(&inventory.Hardware{})
	if res.Error != nil {
		return fmt.Errorf("delete hardware: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return inventory.ErrNotFound
	}
	return nil
}
