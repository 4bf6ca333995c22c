package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/internal/services"
)

// BookingHandler handles payment intents, confirmation and booking reads
type BookingHandler struct {
	intents       *services.BookingIntentService
	confirmations *services.BookingConfirmationService
	bookings      *services.BookingService
	logger        *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(
	intents *services.BookingIntentService,
	confirmations *services.BookingConfirmationService,
	bookings *services.BookingService,
	logger *logrus.Logger,
) *BookingHandler {
	return &BookingHandler{
		intents:       intents,
		confirmations: confirmations,
		bookings:      bookings,
		logger:        logger,
	}
}

// CreatePaymentIntent handles POST /api/v1/create-payment-intent
func (h *BookingHandler) CreatePaymentIntent(c *gin.Context) {
	caller := currentCaller(c)
	if caller == nil {
		respondError(c, h.logger, models.ErrUnauthorized)
		return
	}

	var req models.CreatePaymentIntentRequest
	if err := bindStrictJSON(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp, err := h.intents.CreateFromRequest(requestContext(c), caller, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ConfirmBooking handles PATCH /api/v1/booking/:id
// The id is a payment intent id or, failing that, a booking id.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	if currentCaller(c) == nil {
		respondError(c, h.logger, models.ErrUnauthorized)
		return
	}

	booking, err := h.confirmations.ConfirmByReference(requestContext(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// DeleteBooking handles DELETE /api/v1/booking/:id
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	booking, err := h.bookings.DeleteBooking(requestContext(c), currentCaller(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ListRoomBookings handles GET /api/v1/booking/:id where id is a room id
func (h *BookingHandler) ListRoomBookings(c *gin.Context) {
	roomID, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	bookings, err := h.bookings.ListRoomBookings(c.Request.Context(), currentCaller(c), roomID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// UnavailableDates handles GET /api/v1/rooms/:roomId/unavailable-dates
func (h *BookingHandler) UnavailableDates(c *gin.Context) {
	roomID, err := uuidParam(c, "roomId")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	dates, err := h.bookings.UnavailableDates(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	days := make([]string, len(dates))
	for i, d := range dates {
		days[i] = d.Format("2006-01-02")
	}
	c.JSON(http.StatusOK, gin.H{
		"roomId": roomID,
		"dates":  days,
	})
}

// Quote handles POST /api/v1/rooms/:roomId/quote
func (h *BookingHandler) Quote(c *gin.Context) {
	roomID, err := uuidParam(c, "roomId")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req services.QuoteRequest
	if err := bindStrictJSON(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	quote, err := h.bookings.Quote(c.Request.Context(), roomID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// MyBookings handles GET /api/v1/my-bookings
func (h *BookingHandler) MyBookings(c *gin.Context) {
	bookings, err := h.bookings.MyBookings(c.Request.Context(), currentCaller(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// HotelBookings handles GET /api/v1/hotels/:hotelId/bookings
func (h *BookingHandler) HotelBookings(c *gin.Context) {
	hotelID, err := uuidParam(c, "hotelId")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	bookings, err := h.bookings.HotelBookings(c.Request.Context(), currentCaller(c), hotelID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}
