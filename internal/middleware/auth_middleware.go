package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"funnel-server/internal/authutils"
	"funnel-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// apiError - стандартизированный ответ об ошибке middleware-уровня.
type apiError struct {
	Message string `json:"message"`
}

// AuthMiddleware создает gin middleware для проверки ID-токена и ролей.
// Извлекает Bearer-токен, верифицирует его предоставленным verifier'ом,
// проверяет требуемые роли и кладет UserID/Roles в контекст запроса.
func AuthMiddleware(verifier authutils.TokenVerifier, logger *zap.Logger, requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.With(zap.String("path", c.Request.URL.Path))

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{Message: "Unauthorized: Missing token"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Malformed Authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{Message: "Unauthorized: Malformed token header"})
			return
		}
		tokenString := parts[1]

		claims, err := verifier(c.Request.Context(), tokenString)
		if err != nil {
			msg := "Unauthorized: Invalid token"
			if errors.Is(err, models.ErrTokenExpired) {
				msg = "Unauthorized: Token expired"
			}
			// Логгируем начало токена для отладки, не весь токен
			tokenSnippet := tokenString
			if len(tokenSnippet) > 10 {
				tokenSnippet = tokenSnippet[:10] + "..."
			}
			log.Warn("Token verification failed", zap.Error(err), zap.String("tokenSnippet", tokenSnippet))
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{Message: msg})
			return
		}

		if len(requiredRoles) > 0 {
			hasRequiredRole := false
			for _, requiredRole := range requiredRoles {
				if models.HasRole(claims.Roles, requiredRole) {
					hasRequiredRole = true
					break
				}
			}
			if !hasRequiredRole {
				log.Warn("User does not have required role",
					zap.String("userID", claims.UserID),
					zap.Strings("userRoles", claims.Roles),
					zap.Strings("requiredRoles", requiredRoles),
				)
				c.AbortWithStatusJSON(http.StatusForbidden, apiError{Message: "Forbidden: Insufficient permissions"})
				return
			}
		}

		// Добавляем информацию в контекст запроса
		ctx := context.WithValue(c.Request.Context(), models.UserContextKey, claims.UserID)
		ctx = context.WithValue(ctx, models.RolesContextKey, claims.Roles)
		c.Request = c.Request.WithContext(ctx)

		log.Debug("User authorized", zap.String("userID", claims.UserID), zap.Strings("roles", claims.Roles))
		c.Next()
	}
}
