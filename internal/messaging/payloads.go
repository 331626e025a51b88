package messaging

import (
	"time"

	"github.com/google/uuid"
)

// ConversionEventPayload - событие конверсии: игрок прошел воронку целиком
// и был отправлен на редирект-ссылку.
type ConversionEventPayload struct {
	SessionID      uuid.UUID `json:"session_id"`
	FunnelID       uuid.UUID `json:"funnel_id"`
	OwnerID        string    `json:"owner_id"`
	RedirectLink   string    `json:"redirect_link"`
	ConversionGoal string    `json:"conversion_goal,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
