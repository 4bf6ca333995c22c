package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/internal/services"
)

// HotelHandler handles hotel and room management
type HotelHandler struct {
	hotels *services.HotelService
	logger *logrus.Logger
}

// NewHotelHandler creates a new hotel handler
func NewHotelHandler(hotels *services.HotelService, logger *logrus.Logger) *HotelHandler {
	return &HotelHandler{
		hotels: hotels,
		logger: logger,
	}
}

// ===================================================================
// HOTELS
// ===================================================================

// CreateHotel handles POST /api/v1/hotels
func (h *HotelHandler) CreateHotel(c *gin.Context) {
	var in models.HotelInput
	if err := bindStrictJSON(c, &in); err != nil {
		respondError(c, h.logger, err)
		return
	}

	hotel, err := h.hotels.CreateHotel(c.Request.Context(), currentCaller(c), &in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, hotel)
}

// ListHotels handles GET /api/v1/hotels?title=&country=&state=&city=
func (h *HotelHandler) ListHotels(c *gin.Context) {
	var filter models.HotelFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondError(c, h.logger, models.NewValidationError("invalid query: %s", err.Error()))
		return
	}

	hotels, err := h.hotels.ListHotels(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, hotels)
}

// GetHotel handles GET /api/v1/hotels/:hotelId
func (h *HotelHandler) GetHotel(c *gin.Context) {
	id, err := uuidParam(c, "hotelId")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	hotel, err := h.hotels.GetHotel(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, hotel)
}

// MyHotels handles GET /api/v1/my-hotels
func (h *HotelHandler) MyHotels(c *gin.Context) {
	hotels, err := h.hotels.MyHotels(c.Request.Context(), currentCaller(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, hotels)
}

// UpdateHotel handles PATCH /api/v1/hotels/:hotelId
func (h *HotelHandler) UpdateHotel(c *gin.Context) {
	id, err := uuidParam(c, "hotelId")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var in models.HotelInput
	if err := bindStrictJSON(c, &in); err != nil {
		respondError(c, h.logger, err)
		return
	}

	hotel, err := h.hotels.UpdateHotel(c.Request.Context(), currentCaller(c), id, &in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, hotel)
}

// DeleteHotel handles DELETE /api/v1/hotels/:hotelId
func (h *HotelHandler) DeleteHotel(c *gin.Context) {
	id, err := uuidParam(c, "hotelId")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	hotel, err := h.hotels.DeleteHotel(c.Request.Context(), currentCaller(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, hotel)
}

// ===================================================================
// ROOMS
// ===================================================================

// CreateRoom handles POST /api/v1/rooms
func (h *HotelHandler) CreateRoom(c *gin.Context) {
	var in models.RoomInput
	if err := bindStrictJSON(c, &in); err != nil {
		respondError(c, h.logger, err)
		return
	}

	room, err := h.hotels.CreateRoom(c.Request.Context(), currentCaller(c), &in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, room)
}

// UpdateRoom handles PATCH /api/v1/rooms/:roomId
func (h *HotelHandler) UpdateRoom(c *gin.Context) {
	id, err := uuidParam(c, "roomId")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var in models.RoomInput
	if err := bindStrictJSON(c, &in); err != nil {
		respondError(c, h.logger, err)
		return
	}

	room, err := h.hotels.UpdateRoom(c.Request.Context(), currentCaller(c), id, &in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, room)
}

// DeleteRoom handles DELETE /api/v1/rooms/:roomId
func (h *HotelHandler) DeleteRoom(c *gin.Context) {
	id, err := uuidParam(c, "roomId")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	room, err := h.hotels.DeleteRoom(c.Request.Context(), currentCaller(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, room)
}
