package handler

import (
	"net/http"

	"funnel-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// unlockGate обменивает пароль редакторского гейта на короткоживущий токен.
func (h *FunnelHandler) unlockGate(c *gin.Context) {
	var req unlockGateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Password is required"})
		return
	}

	token, err := h.gate.Unlock(req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.logger.Info("Editor gate unlocked", zap.String("clientIP", c.ClientIP()))
	c.JSON(http.StatusOK, unlockGateResponse{Token: token})
}
