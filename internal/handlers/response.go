package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/middleware"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// respondError maps a service error to its HTTP status. Unknown errors are
// logged and answered with a generic body.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var providerErr *models.PaymentProviderError

	switch {
	case errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Authentication required"})
	case errors.Is(err, models.ErrInvalidRange):
		msg := "endDate must be after startDate"
		if err != models.ErrInvalidRange {
			msg = err.Error()
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_range", Message: msg})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "Resource not found"})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: "Not allowed for this user"})
	case errors.Is(err, models.ErrOverlap):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "overlap", Message: err.Error()})
	case errors.Is(err, models.ErrPriceMismatch):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "price_mismatch", Message: err.Error()})
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
	case errors.As(err, &providerErr):
		logger.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"op":    providerErr.Op,
			"error": err.Error(),
		}).Error("Payment provider request failed")
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "payment_provider_error", Message: "Payment provider request failed"})
	default:
		logger.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"error": err.Error(),
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}
}

// bindStrictJSON decodes the body rejecting unknown fields, then runs the
// binding tags of dst.
func bindStrictJSON(c *gin.Context, dst interface{}) error {
	if c.Request.Body == nil {
		return models.NewValidationError("request body is required")
	}

	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return models.NewValidationError("request body is required")
		}
		return models.NewValidationError("invalid request body: %s", err.Error())
	}
	if dec.More() {
		return models.NewValidationError("request body must hold a single JSON object")
	}

	if binding.Validator == nil {
		return nil
	}
	if err := binding.Validator.ValidateStruct(dst); err != nil {
		return models.NewValidationError("%s", err.Error())
	}
	return nil
}

// currentCaller converts the authenticated user into a service caller
func currentCaller(c *gin.Context) *services.Caller {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		return nil
	}
	return &services.Caller{
		UserID: userCtx.UserID,
		Name:   userCtx.Name,
		Email:  userCtx.Email,
	}
}

// uuidParam parses a path parameter as a uuid
func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, models.NewValidationError("%s must be a valid uuid", name)
	}
	return id, nil
}
