package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/pkg/events"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	_ = godotenv.Load()

	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		logger.Fatal("RABBITMQ_URL is required")
	}
	queue := os.Getenv("RABBITMQ_BOOKING_QUEUE")
	if queue == "" {
		queue = "booking.events"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.WithField("queue", queue).Info("Consuming booking events")

	err := events.Consume(ctx, url, queue, func(_ context.Context, ev *events.BookingEvent) error {
		entry := logger.WithFields(logrus.Fields{
			"type":              ev.Type,
			"booking_id":        ev.BookingID,
			"hotel_id":          ev.HotelID,
			"room_id":           ev.RoomID,
			"hotel_owner_id":    ev.HotelOwnerID,
			"user_id":           ev.UserID,
			"start_date":        ev.StartDate,
			"end_date":          ev.EndDate,
			"total_price":       ev.TotalPrice,
			"currency":          ev.Currency,
			"payment_intent_id": ev.PaymentIntentID,
		})

		switch ev.Type {
		case events.TypeBookingConfirmed:
			entry.Info("Booking confirmed, notify guest and hotel owner")
		case events.TypeBookingDeleted:
			entry.Info("Booking deleted, notify guest")
		default:
			entry.Debug("Booking event")
		}
		return nil
	}, logger)

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Fatal("Consumer stopped")
	}
	logger.Info("Consumer exited")
}
