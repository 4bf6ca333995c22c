package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/internal/services"
	"github.com/staynest/booking-backend/pkg/payments"
)

const maxWebhookBody = 64 << 10

// WebhookHandler receives payment provider notifications
type WebhookHandler struct {
	confirmations *services.BookingConfirmationService
	audit         *services.AuditService
	secret        string
	logger        *logrus.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(
	confirmations *services.BookingConfirmationService,
	audit *services.AuditService,
	secret string,
	logger *logrus.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		confirmations: confirmations,
		audit:         audit,
		secret:        secret,
		logger:        logger,
	}
}

// Stripe handles POST /api/v1/webhooks/stripe
// A succeeded payment intent confirms its booking. Answers other than 5xx
// tell Stripe to stop retrying.
func (h *WebhookHandler) Stripe(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "payload_too_large"})
		return
	}

	event, err := payments.ParseStripeWebhook(payload, c.GetHeader("Stripe-Signature"), h.secret)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"ip":    c.ClientIP(),
			"error": err.Error(),
		}).Warn("Rejected webhook")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_signature"})
		return
	}

	ctx := requestContext(c)
	h.audit.LogWebhook(ctx, event.ID, event.Type, event.PaymentIntentID)

	if event.Type != payments.EventPaymentSucceeded || event.PaymentIntentID == "" {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	booking, err := h.confirmations.ConfirmPayment(ctx, event.PaymentIntentID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"received": true, "bookingId": booking.ID})
	case errors.Is(err, models.ErrNotFound):
		// intent not created by this service
		c.JSON(http.StatusOK, gin.H{"received": true, "ignored": true})
	case errors.Is(err, models.ErrOverlap):
		h.logger.WithFields(logrus.Fields{
			"event_id":          event.ID,
			"payment_intent_id": event.PaymentIntentID,
		}).Error("Paid booking overlaps a confirmed booking and was not confirmed")
		c.JSON(http.StatusOK, gin.H{"received": true, "rejected": "overlap"})
	default:
		h.logger.WithFields(logrus.Fields{
			"event_id":          event.ID,
			"payment_intent_id": event.PaymentIntentID,
			"error":             err.Error(),
		}).Error("Webhook confirmation failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}
}
