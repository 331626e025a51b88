package authutils

import (
	"errors"
	"fmt"
	"time"

	"funnel-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const gateSubject = "editor-gate"

// EditorGate - парольный гейт редакторских маршрутов. Общий секрет хранится
// как bcrypt-хэш; успешный ввод пароля обменивается на короткоживущий
// HMAC-подписанный токен, который дальше проверяется middleware'ом.
type EditorGate struct {
	secretHash []byte
	jwtSecret  []byte
	tokenTTL   time.Duration
	logger     *zap.Logger
}

// NewEditorGate создает гейт. secretHash - bcrypt-хэш пароля, jwtSecret -
// ключ подписи выдаваемых токенов.
func NewEditorGate(secretHash, jwtSecret string, tokenTTL time.Duration, logger *zap.Logger) (*EditorGate, error) {
	if secretHash == "" {
		return nil, errors.New("gate secret hash cannot be empty")
	}
	if jwtSecret == "" {
		return nil, errors.New("gate JWT secret cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EditorGate{
		secretHash: []byte(secretHash),
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		logger:     logger.Named("EditorGate"),
	}, nil
}

// Unlock сверяет пароль с хэшем и выдает гейт-токен.
func (g *EditorGate) Unlock(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(g.secretHash, []byte(password)); err != nil {
		g.logger.Warn("Editor gate unlock rejected")
		return "", models.ErrGatePassword
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   gateSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(g.tokenTTL)),
	})
	signed, err := token.SignedString(g.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи гейт-токена: %w", err)
	}
	g.logger.Debug("Editor gate unlocked", zap.Duration("ttl", g.tokenTTL))
	return signed, nil
}

// Verify проверяет подпись и срок действия гейт-токена.
func (g *EditorGate) Verify(tokenString string) error {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Проверяем метод подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return g.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return models.ErrTokenMalformed
		}
		return fmt.Errorf("%w: %v", models.ErrTokenInvalid, err)
	}
	if !token.Valid || claims.Subject != gateSubject {
		return models.ErrTokenInvalid
	}
	return nil
}
