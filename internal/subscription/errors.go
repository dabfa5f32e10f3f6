package subscription

import (
	"errors"

	"asset-manager-api/internal/domain/organizations"
)

var (
	ErrInvalidPlan          = errors.New("invalid plan selected")
	ErrAlreadyOnPlan        = errors.New("already on this plan")
	ErrNoActiveSubscription = errors.New("no active subscription found")
	ErrNoSubscription       = errors.New("no subscription found")
	ErrNoCustomer           = errors.New("no billing customer for organization")
	ErrInvalidCheckout      = errors.New("checkout session does not belong to organization or is incomplete")
	ErrProviderUnavailable  = errors.New("billing provider unavailable")
	ErrSignatureInvalid     = errors.New("invalid webhook signature")
	ErrMalformedEvent       = errors.New("malformed webhook event")
	ErrNotFound             = organizations.ErrNotFound
)
