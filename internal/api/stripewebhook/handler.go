package stripewebhooks

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"asset-manager-api/internal/infra/eventledger"
	"asset-manager-api/internal/infra/metrics"
	stripeinfra "asset-manager-api/internal/infra/stripe"
	"asset-manager-api/internal/subscription"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxBodyBytes = 65536

// EventHandler applies one verified provider event.
type EventHandler interface {
	Handle(ctx context.Context, ev subscription.Event) (subscription.Outcome, error)
}

type Handler struct {
	secret string
	ledger eventledger.Ledger
	events EventHandler
	logger *zap.Logger
}

func NewHandler(secret string, ledger eventledger.Ledger, events EventHandler, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{secret: secret, ledger: ledger, events: events, logger: logger}
}

// StripeWebhook verifies the signature, then applies the event at most once.
// Failures answer 5xx so Stripe retries; duplicates are acknowledged.
func (h *Handler) StripeWebhook(c *gin.Context) {
	payload, err := readStripeBody(c, maxBodyBytes)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	ev, err := stripeinfra.VerifyEvent(payload, c.GetHeader("Stripe-Signature"), h.secret)
	if err != nil {
		outcome := "malformed"
		if errors.Is(err, subscription.ErrSignatureInvalid) {
			outcome = "invalid_signature"
		}
		metrics.WebhookRequestsTotal.WithLabelValues("unknown", outcome).Inc()
		h.logger.Warn("stripe webhook rejected", zap.String("outcome", outcome), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	start := time.Now()
	defer func() {
		metrics.WebhookDuration.WithLabelValues(ev.Type).Observe(time.Since(start).Seconds())
	}()

	var outcome subscription.Outcome
	already, err := h.ledger.Do(c.Request.Context(), ev.ID, func(ctx context.Context) error {
		var handleErr error
		outcome, handleErr = h.events.Handle(ctx, ev)
		return handleErr
	})

	switch {
	case errors.Is(err, eventledger.ErrInFlight):
		metrics.WebhookRequestsTotal.WithLabelValues(ev.Type, "in_flight").Inc()
		c.JSON(http.StatusConflict, gin.H{"error": "Event is already being processed"})
	case err != nil:
		metrics.WebhookRequestsTotal.WithLabelValues(ev.Type, "error").Inc()
		h.logger.Error("stripe webhook processing failed",
			zap.String("event_id", ev.ID),
			zap.String("event_type", ev.Type),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook processing failed"})
	case already:
		metrics.WebhookRequestsTotal.WithLabelValues(ev.Type, "duplicate").Inc()
		c.JSON(http.StatusOK, gin.H{"received": true, "status": "duplicate"})
	default:
		metrics.WebhookRequestsTotal.WithLabelValues(ev.Type, string(outcome)).Inc()
		h.logger.Info("stripe webhook processed",
			zap.String("event_id", ev.ID),
			zap.String("event_type", ev.Type),
			zap.String("outcome", string(outcome)))
		c.JSON(http.StatusOK, gin.H{"received": true, "status": "processed", "outcome": outcome})
	}
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
