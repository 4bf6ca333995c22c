package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/pkg/events"
)

const eventDateLayout = "2006-01-02"

func newBookingEvent(eventType string, b *models.Booking) events.BookingEvent {
	return events.BookingEvent{
		Type:              eventType,
		BookingID:         b.ID.String(),
		HotelID:           b.HotelID.String(),
		RoomID:            b.RoomID.String(),
		HotelOwnerID:      b.HotelOwnerID,
		UserID:            b.UserID,
		UserEmail:         b.UserEmail,
		StartDate:         b.StartDate.UTC().Format(eventDateLayout),
		EndDate:           b.EndDate.UTC().Format(eventDateLayout),
		BreakfastIncluded: b.BreakfastIncluded,
		TotalPrice:        b.TotalPrice,
		Currency:          b.Currency,
		PaymentIntentID:   b.PaymentIntentID,
		OccurredAt:        time.Now().UTC(),
	}
}

// publishBookingEvent is best effort: the booking row is the source of truth
func publishBookingEvent(ctx context.Context, publisher events.Publisher, logger *logrus.Logger, eventType string, b *models.Booking) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, newBookingEvent(eventType, b)); err != nil {
		logger.WithFields(logrus.Fields{
			"event_type": eventType,
			"booking_id": b.ID,
			"error":      err.Error(),
		}).Warn("Failed to publish booking event")
	}
}
