package postgres

import (
	"context"
	"fmt"

	"asset-manager-api/internal/domain/billing"

	"gorm.io/gorm/clause"
)

// RecordPayment upserts by invoice id so webhook redelivery keeps one row.
func (s *Store) RecordPayment(ctx context.Context, p billing.Payment) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "stripe_invoice_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "amount_cents", "currency", "receipt_url", "plan"}),
		}).
		Create(&p).Error
	if err != nil {
		return fmt.Errorf("record payment: %w", err)
	}
	return nil
}

func (s *Store) ListPayments(ctx context.Context, organizationID string) ([]billing.Payment, error) {
	var payments []billing.Payment
	if err := s.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}
