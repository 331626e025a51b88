package handler

import (
	"net/http"

	"funnel-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// grantAdmin выдает админскую роль по email. Доступен только админам:
// самоназначение первой роли делается вне API (напрямую у провайдера).
func (h *FunnelHandler) grantAdmin(c *gin.Context) {
	var req grantAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "A valid email is required"})
		return
	}

	if err := h.granter.GrantAdminRole(c.Request.Context(), req.Email); err != nil {
		handleServiceError(c, err)
		return
	}

	callerID, _ := models.GetUserIDFromContext(c.Request.Context())
	h.logger.Info("Admin role granted",
		zap.String("email", req.Email),
		zap.String("grantedBy", callerID),
	)
	c.JSON(http.StatusOK, gin.H{"message": "Success! " + req.Email + " has been made an admin."})
}
