package repository

import (
	"context"
	"time"

	"funnel-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX - абстракция над пулом соединений или транзакцией pgx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// FunnelRepository определяет доступ к хранилищу воронок.
type FunnelRepository interface {
	// Create сохраняет новую воронку.
	Create(ctx context.Context, funnel *models.Funnel) error

	// GetByID возвращает воронку по ID с проверкой владельца.
	// Возвращает models.ErrNotFound, если воронка не найдена или принадлежит другому пользователю.
	GetByID(ctx context.Context, id uuid.UUID, ownerID string) (*models.Funnel, error)

	// GetByIDPublic возвращает воронку по ID без проверки владельца.
	// Используется плеером: играть воронку может кто угодно по ссылке.
	GetByIDPublic(ctx context.Context, id uuid.UUID) (*models.Funnel, error)

	// Update перезаписывает имя и данные воронки целиком (last-write-wins).
	Update(ctx context.Context, funnel *models.Funnel) error

	// ListByOwner возвращает все воронки пользователя, новые первыми.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Funnel, error)

	// ListAll возвращает все воронки всех пользователей (админский обзор).
	ListAll(ctx context.Context) ([]models.Funnel, error)

	// Delete удаляет воронку с проверкой владельца.
	Delete(ctx context.Context, id uuid.UUID, ownerID string) error
}

// PlaySessionRepository хранит состояние активных прохождений воронок.
type PlaySessionRepository interface {
	// Save сохраняет сессию с TTL.
	Save(ctx context.Context, session *models.PlaySession, ttl time.Duration) error

	// Get возвращает сессию по ID. models.ErrSessionNotFound, если сессии нет или она истекла.
	Get(ctx context.Context, sessionID uuid.UUID) (*models.PlaySession, error)

	// AcquireAnswerLock атомарно захватывает блокировку на прием ответа в сессии.
	// Возвращает false, если блокировка уже удерживается (окно еще не истекло).
	AcquireAnswerLock(ctx context.Context, sessionID uuid.UUID, window time.Duration) (bool, error)
}

// LegacyImportRepository отмечает факт одноразовой миграции старых данных пользователя.
type LegacyImportRepository interface {
	// HasImported сообщает, выполнялась ли уже миграция для пользователя.
	HasImported(ctx context.Context, ownerID string) (bool, error)

	// MarkImported фиксирует выполненную миграцию. Повторный вызов - no-op.
	MarkImported(ctx context.Context, ownerID string) error
}
