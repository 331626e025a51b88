package handler

import (
	"time"

	"funnel-server/internal/models"

	"github.com/google/uuid"
)

// --- Запросы ---

type unlockGateRequest struct {
	Password string `json:"password" binding:"required"`
}

type createFunnelRequest struct {
	Name string `json:"name" binding:"required"`
}

type saveFunnelDataRequest struct {
	Name string            `json:"name"`
	Data models.FunnelData `json:"data"`
}

type importQuestionsRequest struct {
	Questions []models.Question `json:"questions" binding:"required"`
}

type legacyImportRequest struct {
	Funnels []models.Funnel `json:"funnels" binding:"required"`
}

type answerRequest struct {
	AnswerIndex *int `json:"answerIndex" binding:"required"`
}

type grantAdminRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// --- Ответы ---

type unlockGateResponse struct {
	Token string `json:"token"`
}

// funnelResponse - воронка в ответах дашборда/редактора, с готовой play-ссылкой.
type funnelResponse struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	OwnerID   string            `json:"ownerId"`
	Data      models.FunnelData `json:"data"`
	PlayURL   string            `json:"playUrl"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func (h *FunnelHandler) toFunnelResponse(f *models.Funnel) funnelResponse {
	return funnelResponse{
		ID:        f.ID,
		Name:      f.Name,
		OwnerID:   f.OwnerID,
		Data:      f.Data,
		PlayURL:   h.funnelService.PlayURL(f.ID),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// playerAnswer и playerQuestion - представление вопроса для плеера.
// Партнерские ссылки клиенту не отдаются: редирект вычисляется на сервере.
type playerAnswer struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type playerQuestion struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	Type    string         `json:"type"`
	Answers []playerAnswer `json:"answers"`
}

func toPlayerQuestion(q *models.Question) *playerQuestion {
	if q == nil {
		return nil
	}
	answers := make([]playerAnswer, 0, len(q.Answers))
	for _, a := range q.Answers {
		answers = append(answers, playerAnswer{ID: a.ID, Text: a.Text})
	}
	return &playerQuestion{ID: q.ID, Title: q.Title, Type: q.Type, Answers: answers}
}

// sessionTheme - цвета воронки для отрисовки плеера.
type sessionTheme struct {
	PrimaryColor    string `json:"primaryColor"`
	ButtonColor     string `json:"buttonColor"`
	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`
}

type sessionResponse struct {
	SessionID      uuid.UUID               `json:"sessionId"`
	State          models.PlaySessionState `json:"state"`
	QuestionIndex  int                     `json:"questionIndex"`
	TotalQuestions int                     `json:"totalQuestions"`
	Question       *playerQuestion         `json:"question,omitempty"`
	Theme          sessionTheme            `json:"theme"`
}

func toSessionResponse(s *models.PlaySession) sessionResponse {
	resp := sessionResponse{
		SessionID:      s.ID,
		State:          s.State,
		QuestionIndex:  s.QuestionIndex,
		TotalQuestions: len(s.Data.Questions),
		Theme: sessionTheme{
			PrimaryColor:    s.Data.PrimaryColor,
			ButtonColor:     s.Data.ButtonColor,
			BackgroundColor: s.Data.BackgroundColor,
			TextColor:       s.Data.TextColor,
		},
	}
	if s.State == models.StateAnswering && s.QuestionIndex < len(s.Data.Questions) {
		resp.Question = toPlayerQuestion(&s.Data.Questions[s.QuestionIndex])
	}
	return resp
}

type answerResponse struct {
	State         models.PlaySessionState `json:"state"`
	QuestionIndex int                     `json:"questionIndex"`
	Question      *playerQuestion         `json:"question,omitempty"`
	RedirectLink  string                  `json:"redirectLink,omitempty"`
}
