package handlers

import (
	"github.com/gin-gonic/gin"
)

// Routes groups the handlers mounted under /api/v1
type Routes struct {
	Bookings *BookingHandler
	Hotels   *HotelHandler
	Drafts   *DraftHandler
	Webhooks *WebhookHandler
}

// Register mounts every route on v1. auth guards the routes that need a
// signed-in user; public routes see whatever identity v1's own middleware attached.
func (r Routes) Register(v1 *gin.RouterGroup, auth gin.HandlerFunc) {
	// Public routes
	v1.GET("/hotels", r.Hotels.ListHotels)
	v1.GET("/hotels/:hotelId", r.Hotels.GetHotel)
	v1.GET("/rooms/:roomId/unavailable-dates", r.Bookings.UnavailableDates)
	v1.POST("/rooms/:roomId/quote", r.Bookings.Quote)

	// Signed by the provider, not the user
	if r.Webhooks != nil {
		v1.POST("/webhooks/stripe", r.Webhooks.Stripe)
	}

	protected := v1.Group("")
	protected.Use(auth)
	{
		// Bookings
		protected.POST("/create-payment-intent", r.Bookings.CreatePaymentIntent)
		protected.PATCH("/booking/:id", r.Bookings.ConfirmBooking)
		protected.DELETE("/booking/:id", r.Bookings.DeleteBooking)
		protected.GET("/booking/:id", r.Bookings.ListRoomBookings)
		protected.GET("/my-bookings", r.Bookings.MyBookings)
		protected.GET("/hotels/:hotelId/bookings", r.Bookings.HotelBookings)

		// Hotels and rooms
		protected.POST("/hotels", r.Hotels.CreateHotel)
		protected.GET("/my-hotels", r.Hotels.MyHotels)
		protected.PATCH("/hotels/:hotelId", r.Hotels.UpdateHotel)
		protected.DELETE("/hotels/:hotelId", r.Hotels.DeleteHotel)
		protected.POST("/rooms", r.Hotels.CreateRoom)
		protected.PATCH("/rooms/:roomId", r.Hotels.UpdateRoom)
		protected.DELETE("/rooms/:roomId", r.Hotels.DeleteRoom)

		// Drafts
		protected.POST("/booking-drafts", r.Drafts.CreateDraft)
		protected.GET("/booking-drafts/:token", r.Drafts.GetDraft)
		protected.PUT("/booking-drafts/:token", r.Drafts.ReplaceDraft)
		protected.DELETE("/booking-drafts/:token", r.Drafts.DeleteDraft)
	}
}
