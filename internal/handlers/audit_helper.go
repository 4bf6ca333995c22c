package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/staynest/booking-backend/internal/services"
	"github.com/staynest/booking-backend/internal/utils"
)

// requestContext carries the client address and user agent to the audit trail
func requestContext(c *gin.Context) context.Context {
	return services.WithRequestMeta(c.Request.Context(), services.RequestMeta{
		IPAddress: utils.GetRealIP(c),
		UserAgent: utils.GetUserAgent(c),
	})
}
