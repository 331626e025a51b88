package models

import (
	"time"

	"github.com/google/uuid"
)

// PlaySessionState - состояние игровой сессии.
type PlaySessionState string

const (
	// StateAnswering - сессия активна, принимается ровно один ответ на текущий вопрос.
	StateAnswering PlaySessionState = "answering"
	// StateRedirecting - терминальное состояние: редирект вычислен и выполнен.
	StateRedirecting PlaySessionState = "redirecting"
	// StateCompleted - терминальное состояние: вопросы закончились без редиректа
	// (в воронке меньше шести вопросов).
	StateCompleted PlaySessionState = "completed"
)

// Terminal сообщает, завершена ли сессия. Из терминального состояния
// переходов нет: повторный ответ отклоняется.
func (s PlaySessionState) Terminal() bool {
	return s == StateRedirecting || s == StateCompleted
}

// PlaySession - одно прохождение воронки игроком. Data - снимок FunnelData,
// сделанный один раз при старте сессии; дальнейшие правки воронки в редакторе
// на запущенную сессию не влияют, и сама сессия снимок никогда не мутирует.
// QuestionIndex монотонно растет, пока сессия в состоянии answering.
type PlaySession struct {
	ID            uuid.UUID        `json:"id"`
	FunnelID      uuid.UUID        `json:"funnelId"`
	OwnerID       string           `json:"ownerId"`
	Data          FunnelData       `json:"data"`
	QuestionIndex int              `json:"questionIndex"`
	State         PlaySessionState `json:"state"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}
