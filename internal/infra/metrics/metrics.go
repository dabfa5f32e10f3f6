package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookRequestsTotal counts Stripe webhook requests by event type and outcome.
	WebhookRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assetmgr",
		Subsystem: "billing",
		Name:      "webhook_requests_total",
		Help:      "Total Stripe webhook requests by event type and outcome.",
	}, []string{"event_type", "outcome"})

	// WebhookDuration tracks Stripe webhook processing latency.
	WebhookDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "assetmgr",
		Subsystem: "billing",
		Name:      "webhook_duration_seconds",
		Help:      "Stripe webhook processing duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"event_type"})

	// SubscriptionSyncs counts snapshot writes from provider state.
	SubscriptionSyncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assetmgr",
		Subsystem: "billing",
		Name:      "subscription_syncs_total",
		Help:      "Subscription snapshot syncs by result.",
	}, []string{"result"})

	// SyncConflicts counts optimistic-lock retries.
	SyncConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "assetmgr",
		Subsystem: "billing",
		Name:      "subscription_sync_conflicts_total",
		Help:      "Version conflicts hit while saving a subscription snapshot.",
	})

	// ProviderCalls counts billing provider API calls by operation and result.
	ProviderCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assetmgr",
		Subsystem: "billing",
		Name:      "provider_calls_total",
		Help:      "Billing provider API calls by operation and result.",
	}, []string{"operation", "result"})

	// EntitlementDenials counts 403s from the entitlement gates.
	EntitlementDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assetmgr",
		Subsystem: "access",
		Name:      "denials_total",
		Help:      "Requests denied by entitlement checks, by reason.",
	}, []string{"reason"})

	// PlanChanges counts orchestrated plan changes by action.
	PlanChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assetmgr",
		Subsystem: "billing",
		Name:      "plan_changes_total",
		Help:      "Plan change requests by action (checkout/updated).",
	}, []string{"action"})
)
