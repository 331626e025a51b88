package handler

import (
	"net/http"

	"funnel-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func parseSessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid session ID"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *FunnelHandler) startSession(c *gin.Context) {
	funnelID, ok := parseFunnelID(c)
	if !ok {
		return
	}

	session, err := h.playerService.StartSession(c.Request.Context(), funnelID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSessionResponse(session))
}

func (h *FunnelHandler) getSession(c *gin.Context) {
	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	session, err := h.playerService.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(session))
}

func (h *FunnelHandler) answer(c *gin.Context) {
	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AnswerIndex == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "answerIndex is required"})
		return
	}

	result, err := h.playerService.Answer(c.Request.Context(), sessionID, *req.AnswerIndex)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, answerResponse{
		State:         result.State,
		QuestionIndex: result.QuestionIndex,
		Question:      toPlayerQuestion(result.Question),
		RedirectLink:  result.RedirectLink,
	})
}
