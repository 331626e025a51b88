package middleware

import (
	"net/http"

	"funnel-server/internal/authutils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const gateTokenHeader = "X-Gate-Token"

// GateMiddleware проверяет токен редакторского "шлюза" (второй фактор доступа
// к редактору воронок). Ожидает JWT в заголовке X-Gate-Token.
func GateMiddleware(gate *authutils.EditorGate, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader(gateTokenHeader)
		if tokenString == "" {
			logger.Warn("Gate token missing", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{Message: "Unauthorized: Missing gate token"})
			return
		}

		if err := gate.Verify(tokenString); err != nil {
			logger.Warn("Gate token verification failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{Message: "Unauthorized: Invalid gate token"})
			return
		}

		c.Next()
	}
}
