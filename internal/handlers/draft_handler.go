package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/internal/services"
)

// DraftHandler handles booking drafts
type DraftHandler struct {
	drafts *services.DraftService
	logger *logrus.Logger
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(drafts *services.DraftService, logger *logrus.Logger) *DraftHandler {
	return &DraftHandler{
		drafts: drafts,
		logger: logger,
	}
}

// CreateDraft handles POST /api/v1/booking-drafts
func (h *DraftHandler) CreateDraft(c *gin.Context) {
	var in models.BookingDraftInput
	if err := bindStrictJSON(c, &in); err != nil {
		respondError(c, h.logger, err)
		return
	}

	draft, err := h.drafts.Create(c.Request.Context(), currentCaller(c), &in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, draft)
}

// GetDraft handles GET /api/v1/booking-drafts/:token
func (h *DraftHandler) GetDraft(c *gin.Context) {
	draft, err := h.drafts.Get(c.Request.Context(), currentCaller(c), c.Param("token"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, draft)
}

// ReplaceDraft handles PUT /api/v1/booking-drafts/:token
func (h *DraftHandler) ReplaceDraft(c *gin.Context) {
	var in models.BookingDraftInput
	if err := bindStrictJSON(c, &in); err != nil {
		respondError(c, h.logger, err)
		return
	}

	draft, err := h.drafts.Replace(c.Request.Context(), currentCaller(c), c.Param("token"), &in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, draft)
}

// DeleteDraft handles DELETE /api/v1/booking-drafts/:token
func (h *DraftHandler) DeleteDraft(c *gin.Context) {
	if err := h.drafts.Delete(c.Request.Context(), currentCaller(c), c.Param("token")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
