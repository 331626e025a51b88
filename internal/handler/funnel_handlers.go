package handler

import (
	"net/http"

	"funnel-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// requireOwner извлекает uid владельца из контекста запроса.
func (h *FunnelHandler) requireOwner(c *gin.Context) (string, bool) {
	ownerID, ok := models.GetUserIDFromContext(c.Request.Context())
	if !ok {
		h.logger.Error("UserID missing from authenticated request context", zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Code: models.ErrCodeUnauthorized, Message: "Unauthorized"})
		return "", false
	}
	return ownerID, true
}

func parseFunnelID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("funnel_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid funnel ID"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *FunnelHandler) listFunnels(c *gin.Context) {
	ownerID, ok := h.requireOwner(c)
	if !ok {
		return
	}
	roles, _ := models.GetRolesFromContext(c.Request.Context())
	isAdmin := models.HasRole(roles, models.RoleAdmin)

	funnels, err := h.funnelService.ListFunnels(c.Request.Context(), ownerID, isAdmin)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	resp := make([]funnelResponse, 0, len(funnels))
	for i := range funnels {
		resp = append(resp, h.toFunnelResponse(&funnels[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FunnelHandler) createFunnel(c *gin.Context) {
	ownerID, ok := h.requireOwner(c)
	if !ok {
		return
	}

	var req createFunnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Funnel name is required"})
		return
	}

	funnel, err := h.funnelService.CreateFunnel(c.Request.Context(), ownerID, req.Name)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.toFunnelResponse(funnel))
}

func (h *FunnelHandler) getFunnel(c *gin.Context) {
	ownerID, ok := h.requireOwner(c)
	if !ok {
		return
	}
	id, ok := parseFunnelID(c)
	if !ok {
		return
	}

	funnel, err := h.funnelService.GetFunnel(c.Request.Context(), id, ownerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toFunnelResponse(funnel))
}

func (h *FunnelHandler) deleteFunnel(c *gin.Context) {
	ownerID, ok := h.requireOwner(c)
	if !ok {
		return
	}
	id, ok := parseFunnelID(c)
	if !ok {
		return
	}

	if err := h.funnelService.DeleteFunnel(c.Request.Context(), id, ownerID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FunnelHandler) saveFunnelData(c *gin.Context) {
	ownerID, ok := h.requireOwner(c)
	if !ok {
		return
	}
	id, ok := parseFunnelID(c)
	if !ok {
		return
	}

	var req saveFunnelDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid funnel payload"})
		return
	}

	funnel, err := h.funnelService.SaveFunnelData(c.Request.Context(), id, ownerID, req.Name, req.Data)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toFunnelResponse(funnel))
}

func (h *FunnelHandler) addQuestion(c *gin.Context) {
	ownerID, ok := h.requireOwner(c)
	if !ok {
		return
	}
	id, ok := parseFunnelID(c)
	if !ok {
		return
	}

	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid question payload"})
		return
	}

	funnel, err := h.funnelService.AddQuestion(c.Request.Context(), id, ownerID, question)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.toFunnelResponse(funnel))
}

func (h *FunnelHandler) updateQuestion(c *gin.Context) {
	ownerID, ok := h.requireOwner(c)
	if !ok {
		return
	}
	id, ok := parseFunnelID(c)
	if !ok {
		return
	}

	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid question payload"})
		return
	}
	// ID вопроса берется из пути, а не из тела
	question.ID = c.Param("question_id")

	funnel, err := h.funnelService.UpdateQuestion(c.Request.Context(), id, ownerID, question)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toFunnelResponse(funnel))
}

func (h *FunnelHandler) deleteQuestion(c *gin.Context) {
	ownerID, ok := h.requireOwner(c)
	if !ok {
		return
	}
	id, ok := parseFunnelID(c)
	if !ok {
		return
	}

	funnel, err := h.funnelService.DeleteQuestion(c.Request.Context(), id, ownerID, c.Param("question_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toFunnelResponse(funnel))
}

func (h *FunnelHandler) importQuestions(c *gin.Context) {
	ownerID, ok := h.requireOwner(c)
	if !ok {
		return
	}
	id, ok := parseFunnelID(c)
	if !ok {
		return
	}

	var req importQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid import payload"})
		return
	}

	funnel, err := h.funnelService.ImportQuestions(c.Request.Context(), id, ownerID, req.Questions)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toFunnelResponse(funnel))
}

func (h *FunnelHandler) importLegacyFunnels(c *gin.Context) {
	ownerID, ok := h.requireOwner(c)
	if !ok {
		return
	}

	var req legacyImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid legacy import payload"})
		return
	}

	imported, err := h.funnelService.ImportLegacyFunnels(c.Request.Context(), ownerID, req.Funnels)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	resp := make([]funnelResponse, 0, len(imported))
	for i := range imported {
		resp = append(resp, h.toFunnelResponse(&imported[i]))
	}
	c.JSON(http.StatusCreated, resp)
}
