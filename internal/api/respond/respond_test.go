package respond

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"asset-manager-api/internal/domain/inventory"
	"asset-manager-api/internal/subscription"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{subscription.ErrInvalidPlan, http.StatusBadRequest, "invalid plan selected"},
		{fmt.Errorf("change plan: %w", subscription.ErrAlreadyOnPlan), http.StatusBadRequest, "already on this plan"},
		{subscription.ErrNoActiveSubscription, http.StatusBadRequest, "no active subscription found"},
		{subscription.ErrNoCustomer, http.StatusConflict, "no billing customer for organization"},
		{subscription.ErrNotFound, http.StatusNotFound, "organization not found"},
		{inventory.ErrNotFound, http.StatusNotFound, "inventory record not found"},
		{fmt.Errorf("%w: create customer: %w", subscription.ErrProviderUnavailable, errors.New("card_declined sk_live")), http.StatusBadGateway, "Billing provider unavailable"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		status, msg := Status(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.msg, msg)
	}
}
