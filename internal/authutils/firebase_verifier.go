package authutils

import (
	"context"
	"errors"
	"fmt"

	"funnel-server/internal/models"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// TokenVerifier - функция, которая проверяет строку токена и возвращает claims.
// Ошибки: models.ErrTokenInvalid, models.ErrTokenExpired и т.д.
type TokenVerifier func(ctx context.Context, tokenString string) (*models.Claims, error)

// FirebaseVerifier проверяет ID-токены провайдера идентификации и управляет
// custom claims пользователей.
type FirebaseVerifier struct {
	client *fbauth.Client
	logger *zap.Logger
}

// NewFirebaseVerifier создает верификатор на основе файла ключа сервис-аккаунта.
func NewFirebaseVerifier(ctx context.Context, credentialsPath string, logger *zap.Logger) (*FirebaseVerifier, error) {
	if credentialsPath == "" {
		return nil, errors.New("firebase credentials path cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Firebase App из файла '%s': %w", credentialsPath, err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения Firebase Auth client: %w", err)
	}

	logger.Info("Firebase verifier инициализирован", zap.String("credentials_path", credentialsPath))
	return &FirebaseVerifier{
		client: client,
		logger: logger.Named("FirebaseVerifier"),
	}, nil
}

// VerifyToken проверяет ID-токен и извлекает claims.
// Реализует сигнатуру TokenVerifier.
func (v *FirebaseVerifier) VerifyToken(ctx context.Context, tokenString string) (*models.Claims, error) {
	token, err := v.client.VerifyIDToken(ctx, tokenString)
	if err != nil {
		v.logger.Warn("Failed to verify ID token", zap.Error(err))
		if fbauth.IsIDTokenExpired(err) {
			return nil, models.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", models.ErrTokenInvalid, err)
	}

	claims := &models.Claims{UserID: token.UID}
	// Custom claim role проставляется эндпоинтом выдачи админской роли;
	// у обычных пользователей его нет вовсе.
	if role, ok := token.Claims["role"].(string); ok && role != "" {
		claims.Roles = []string{role}
	}
	return claims, nil
}

// GrantAdminRole находит пользователя по email и выставляет ему custom claim
// {role: "admin"}. Claim попадет в ID-токен после его следующего обновления.
func (v *FirebaseVerifier) GrantAdminRole(ctx context.Context, email string) error {
	log := v.logger.With(zap.String("email", email))

	user, err := v.client.GetUserByEmail(ctx, email)
	if err != nil {
		if fbauth.IsUserNotFound(err) {
			log.Warn("User not found for admin grant")
			return models.ErrUserNotFound
		}
		log.Error("Failed to look up user by email", zap.Error(err))
		return fmt.Errorf("ошибка поиска пользователя по email: %w", err)
	}

	if err := v.client.SetCustomUserClaims(ctx, user.UID, map[string]interface{}{"role": models.RoleAdmin}); err != nil {
		log.Error("Failed to set custom claims", zap.String("uid", user.UID), zap.Error(err))
		return fmt.Errorf("ошибка установки custom claims: %w", err)
	}

	log.Info("Admin role granted", zap.String("uid", user.UID))
	return nil
}
