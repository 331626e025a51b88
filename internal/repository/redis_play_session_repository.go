package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"funnel-server/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Compile-time check
var _ PlaySessionRepository = (*redisPlaySessionRepository)(nil)

type redisPlaySessionRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisPlaySessionRepository creates a new Redis-backed PlaySessionRepository.
func NewRedisPlaySessionRepository(client *redis.Client, logger *zap.Logger) PlaySessionRepository {
	return &redisPlaySessionRepository{
		client: client,
		logger: logger.Named("RedisPlaySessionRepo"),
	}
}

func sessionKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("play_session:%s", sessionID)
}

func answerLockKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("play_lock:%s", sessionID)
}

// Save сохраняет сессию целиком (JSON) с заданным TTL.
// Каждое сохранение продлевает жизнь сессии на полный TTL.
func (r *redisPlaySessionRepository) Save(ctx context.Context, session *models.PlaySession, ttl time.Duration) error {
	key := sessionKey(session.ID)
	logFields := []zap.Field{
		zap.String("sessionID", session.ID.String()),
		zap.String("funnelID", session.FunnelID.String()),
		zap.Duration("ttl", ttl),
	}

	payload, err := json.Marshal(session)
	if err != nil {
		r.logger.Error("Failed to marshal play session", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка сериализации игровой сессии: %w", err)
	}

	r.logger.Debug("Saving play session to Redis", logFields...)
	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		r.logger.Error("Failed to save play session in redis", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка сохранения игровой сессии в redis: %w", err)
	}
	return nil
}

// Get возвращает сессию по ID.
func (r *redisPlaySessionRepository) Get(ctx context.Context, sessionID uuid.UUID) (*models.PlaySession, error) {
	key := sessionKey(sessionID)
	r.logger.Debug("Getting play session from Redis", zap.String("key", key))

	payload, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Play session not found in Redis", zap.String("sessionID", sessionID.String()))
			return nil, models.ErrSessionNotFound
		}
		r.logger.Error("Failed to get play session from redis", zap.Error(err), zap.String("key", key))
		return nil, fmt.Errorf("ошибка чтения игровой сессии из redis: %w", err)
	}

	session := &models.PlaySession{}
	if err := json.Unmarshal(payload, session); err != nil {
		// Данные в Redis повреждены
		r.logger.Error("Failed to unmarshal play session from redis data",
			zap.Error(err),
			zap.String("sessionID", sessionID.String()),
		)
		return nil, fmt.Errorf("поврежденные данные игровой сессии %s в redis: %w", sessionID, err)
	}
	return session, nil
}

// AcquireAnswerLock захватывает блокировку приема ответа через SET NX.
// Ключ живет ровно window и истекает сам - отдельного release не требуется.
func (r *redisPlaySessionRepository) AcquireAnswerLock(ctx context.Context, sessionID uuid.UUID, window time.Duration) (bool, error) {
	key := answerLockKey(sessionID)
	logFields := []zap.Field{
		zap.String("sessionID", sessionID.String()),
		zap.Duration("window", window),
	}

	acquired, err := r.client.SetNX(ctx, key, 1, window).Result()
	if err != nil {
		r.logger.Error("Failed to acquire answer lock in redis", append(logFields, zap.Error(err))...)
		return false, fmt.Errorf("ошибка захвата блокировки ответа в redis: %w", err)
	}

	if !acquired {
		r.logger.Debug("Answer lock already held", logFields...)
	}
	return acquired, nil
}
