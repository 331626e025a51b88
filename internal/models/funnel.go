package models

import (
	"time"

	"github.com/google/uuid"
)

// Ограничения структуры воронки.
const (
	// MaxQuestions - жесткий лимит вопросов в одной воронке.
	MaxQuestions = 6
	// MaxAnswers - максимум вариантов ответа на один вопрос.
	MaxAnswers = 4
	// QuestionTypeSingleChoice - единственный реализованный тип вопроса.
	QuestionTypeSingleChoice = "single-choice"
)

// Answer - один вариант ответа на вопрос.
// AffiliateLink - необязательный per-answer override ссылки редиректа.
type Answer struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	AffiliateLink string `json:"affiliateLink,omitempty"`
}

// Question - вопрос воронки. Порядок Answers значим: это и порядок отображения,
// и индекс, по которому игрок отвечает.
type Question struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Type    string   `json:"type"`
	Answers []Answer `json:"answers"`
}

// FunnelData - полезная нагрузка воронки: вопросы, настройки редиректа и тема.
// Сохраняется в БД целиком как один JSON-документ (перезапись всего документа,
// без частичных апдейтов).
type FunnelData struct {
	Questions         []Question `json:"questions"`
	FinalRedirectLink string     `json:"finalRedirectLink"`
	Tracking          string     `json:"tracking"`
	ConversionGoal    string     `json:"conversionGoal"`
	PrimaryColor      string     `json:"primaryColor"`
	ButtonColor       string     `json:"buttonColor"`
	BackgroundColor   string     `json:"backgroundColor"`
	TextColor         string     `json:"textColor"`
}

// Funnel - именованная воронка, принадлежащая владельцу (OwnerID - uid
// провайдера идентификации).
type Funnel struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	OwnerID   string     `json:"ownerId"`
	Data      FunnelData `json:"data"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// DefaultFunnelData возвращает данные новой пустой воронки.
func DefaultFunnelData() FunnelData {
	return FunnelData{
		Questions:       []Question{},
		PrimaryColor:    "#4f46e5",
		ButtonColor:     "#4f46e5",
		BackgroundColor: "#ffffff",
		TextColor:       "#111827",
	}
}
