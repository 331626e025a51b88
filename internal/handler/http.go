package handler

import (
	"context"

	"funnel-server/internal/authutils"
	"funnel-server/internal/middleware"
	"funnel-server/internal/models"
	"funnel-server/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminGranter выдает пользователю админскую роль у провайдера идентификации.
type AdminGranter interface {
	GrantAdminRole(ctx context.Context, email string) error
}

// FunnelHandler - HTTP-обработчик Funnel Service.
type FunnelHandler struct {
	funnelService service.FunnelService
	playerService service.PlayerService
	gate          *authutils.EditorGate
	granter       AdminGranter
	verifier      authutils.TokenVerifier
	logger        *zap.Logger
}

func NewFunnelHandler(
	funnelService service.FunnelService,
	playerService service.PlayerService,
	gate *authutils.EditorGate,
	granter AdminGranter,
	verifier authutils.TokenVerifier,
	logger *zap.Logger,
) *FunnelHandler {
	return &FunnelHandler{
		funnelService: funnelService,
		playerService: playerService,
		gate:          gate,
		granter:       granter,
		verifier:      verifier,
		logger:        logger.Named("FunnelHandler"),
	}
}

func (h *FunnelHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.healthCheck)

	// Разблокировка редакторского гейта: пароль -> короткоживущий токен.
	router.POST("/gate/unlock", h.unlockGate)

	// Плеер публичный: воронку играют по ссылке, без аккаунта.
	playGroup := router.Group("/play")
	{
		playGroup.POST("/funnels/:funnel_id/sessions", h.startSession)
		playGroup.GET("/sessions/:session_id", h.getSession)
		playGroup.POST("/sessions/:session_id/answer", h.answer)
	}

	authMW := middleware.AuthMiddleware(h.verifier, h.logger)

	apiGroup := router.Group("/api")
	apiGroup.Use(authMW)
	{
		funnels := apiGroup.Group("/funnels")
		{
			funnels.GET("", h.listFunnels)
			funnels.POST("", h.createFunnel)
			funnels.GET("/:funnel_id", h.getFunnel)
			funnels.DELETE("/:funnel_id", h.deleteFunnel)
			funnels.POST("/legacy-import", h.importLegacyFunnels)

			// Правки содержимого требуют второго фактора - гейт-токена.
			editor := funnels.Group("")
			editor.Use(middleware.GateMiddleware(h.gate, h.logger))
			{
				editor.PUT("/:funnel_id", h.saveFunnelData)
				editor.POST("/:funnel_id/questions", h.addQuestion)
				editor.PUT("/:funnel_id/questions/:question_id", h.updateQuestion)
				editor.DELETE("/:funnel_id/questions/:question_id", h.deleteQuestion)
				editor.POST("/:funnel_id/questions/import", h.importQuestions)
			}
		}
	}

	adminGroup := router.Group("/admin")
	adminGroup.Use(middleware.AuthMiddleware(h.verifier, h.logger, models.RoleAdmin))
	{
		adminGroup.POST("/grant-admin", h.grantAdmin)
	}
}

func (h *FunnelHandler) healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
