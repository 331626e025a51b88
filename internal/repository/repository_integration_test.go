package repository_test // Используем _test пакет для изоляции

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"funnel-server/internal/models"
	"funnel-server/internal/repository"
	"funnel-server/migrations"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // Драйвер для PostgreSQL
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	// Докер клиент для проверки доступности
	"github.com/docker/docker/client"
)

// RepositoryTestSuite поднимает реальные PostgreSQL и Redis в контейнерах
// и гоняет репозитории против них.
type RepositoryTestSuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	rdContainer *tcredis.RedisContainer
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	funnelRepo  repository.FunnelRepository
	sessionRepo repository.PlaySessionRepository
	legacyRepo  repository.LegacyImportRepository
	logger      *zap.Logger
}

func (s *RepositoryTestSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.logger, err = zap.NewDevelopment()
	require.NoError(s.T(), err, "Failed to create logger for tests")

	// Запускаем контейнер PostgreSQL
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")

	pgConnStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get postgres connection string")

	s.pgPool, err = pgxpool.New(s.ctx, pgConnStr)
	require.NoError(s.T(), err, "Failed to connect to test postgres")

	// Применяем миграции из встроенной ФС
	require.NoError(s.T(), s.runMigrations(pgConnStr), "Failed to run migrations")

	// Запускаем контейнер Redis
	s.rdContainer, err = tcredis.Run(s.ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(1*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start redis container")

	redisHost, err := s.rdContainer.Host(s.ctx)
	require.NoError(s.T(), err)
	redisPort, err := s.rdContainer.MappedPort(s.ctx, "6379/tcp")
	require.NoError(s.T(), err)

	s.redisClient = redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", redisHost, redisPort.Port())})
	_, err = s.redisClient.Ping(s.ctx).Result()
	require.NoError(s.T(), err, "Failed to connect to test redis")

	s.funnelRepo = repository.NewPgFunnelRepository(s.pgPool, s.logger)
	s.sessionRepo = repository.NewRedisPlaySessionRepository(s.redisClient, s.logger)
	s.legacyRepo = repository.NewPgLegacyImportRepository(s.pgPool, s.logger)
}

func (s *RepositoryTestSuite) TearDownSuite() {
	if s.pgPool != nil {
		s.pgPool.Close()
	}
	if s.redisClient != nil {
		s.redisClient.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Error("Failed to terminate postgres container", zap.Error(err))
		}
	}
	if s.rdContainer != nil {
		if err := s.rdContainer.Terminate(s.ctx); err != nil {
			s.logger.Error("Failed to terminate redis container", zap.Error(err))
		}
	}
}

// Перед каждым тестом очищаем Redis и таблицы БД
func (s *RepositoryTestSuite) SetupTest() {
	require.NoError(s.T(), s.redisClient.FlushDB(s.ctx).Err(), "Failed to flush Redis DB")

	_, err := s.pgPool.Exec(s.ctx, "TRUNCATE TABLE funnels, legacy_imports")
	require.NoError(s.T(), err, "Failed to truncate tables")
}

func (s *RepositoryTestSuite) runMigrations(dbURL string) error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create iofs source driver: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, dbURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// TestRepositoryTestSuite запускает набор тестов
func TestRepositoryTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	// Проверяем доступность Docker перед запуском
	cli, err := client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		t.Fatalf("Docker client init error: %v. Ensure Docker is running and accessible.", err)
	}
	if _, err := cli.Ping(context.Background()); err != nil {
		t.Fatalf("Docker daemon is not running or accessible: %v", err)
	}
	cli.Close()

	suite.Run(t, new(RepositoryTestSuite))
}

// --- Сами Тестовые Функции ---

func newTestFunnel(ownerID string) *models.Funnel {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &models.Funnel{
		ID:      uuid.New(),
		Name:    "Тестовая воронка",
		OwnerID: ownerID,
		Data: models.FunnelData{
			Questions: []models.Question{
				{
					ID:    uuid.NewString(),
					Title: "Первый вопрос",
					Type:  models.QuestionTypeSingleChoice,
					Answers: []models.Answer{
						{ID: uuid.NewString(), Text: "Да", AffiliateLink: "https://partner.example/offer"},
						{ID: uuid.NewString(), Text: "Нет"},
					},
				},
			},
			FinalRedirectLink: "https://example.com/final",
			Tracking:          "utm_source=quiz",
			PrimaryColor:      "#4f46e5",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *RepositoryTestSuite) TestFunnelCRUD() {
	t := s.T()
	ctx := context.Background()

	funnel := newTestFunnel("owner-1")
	require.NoError(t, s.funnelRepo.Create(ctx, funnel), "Create should succeed")

	// Чтение владельцем
	got, err := s.funnelRepo.GetByID(ctx, funnel.ID, "owner-1")
	require.NoError(t, err)
	require.Equal(t, funnel.Name, got.Name)
	require.Equal(t, funnel.Data.FinalRedirectLink, got.Data.FinalRedirectLink)
	require.Len(t, got.Data.Questions, 1)
	require.Equal(t, "https://partner.example/offer", got.Data.Questions[0].Answers[0].AffiliateLink)

	// Чужой владелец воронку не видит
	_, err = s.funnelRepo.GetByID(ctx, funnel.ID, "someone-else")
	require.True(t, errors.Is(err, models.ErrNotFound), "Foreign owner should get ErrNotFound")

	// Публичное чтение для плеера работает без владельца
	pub, err := s.funnelRepo.GetByIDPublic(ctx, funnel.ID)
	require.NoError(t, err)
	require.Equal(t, funnel.ID, pub.ID)

	// Обновление
	got.Name = "Переименованная"
	got.Data.Tracking = "utm_source=quiz&utm_medium=cpc"
	got.UpdatedAt = time.Now().UTC()
	require.NoError(t, s.funnelRepo.Update(ctx, got))

	updated, err := s.funnelRepo.GetByID(ctx, funnel.ID, "owner-1")
	require.NoError(t, err)
	require.Equal(t, "Переименованная", updated.Name)
	require.Equal(t, "utm_source=quiz&utm_medium=cpc", updated.Data.Tracking)

	// Удаление
	require.NoError(t, s.funnelRepo.Delete(ctx, funnel.ID, "owner-1"))
	_, err = s.funnelRepo.GetByID(ctx, funnel.ID, "owner-1")
	require.True(t, errors.Is(err, models.ErrNotFound))
}

func (s *RepositoryTestSuite) TestFunnelListIsolation() {
	t := s.T()
	ctx := context.Background()

	first := newTestFunnel("owner-a")
	second := newTestFunnel("owner-a")
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	second.UpdatedAt = second.CreatedAt
	foreign := newTestFunnel("owner-b")

	require.NoError(t, s.funnelRepo.Create(ctx, first))
	require.NoError(t, s.funnelRepo.Create(ctx, second))
	require.NoError(t, s.funnelRepo.Create(ctx, foreign))

	// Владелец видит только свои, свежие первыми
	mine, err := s.funnelRepo.ListByOwner(ctx, "owner-a")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, second.ID, mine[0].ID, "Newest funnel should come first")

	// Админский список видит все
	all, err := s.funnelRepo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	// Удаление чужой воронки не проходит
	err = s.funnelRepo.Delete(ctx, foreign.ID, "owner-a")
	require.True(t, errors.Is(err, models.ErrNotFound))
}

func (s *RepositoryTestSuite) TestLegacyImportFlag() {
	t := s.T()
	ctx := context.Background()

	imported, err := s.legacyRepo.HasImported(ctx, "owner-1")
	require.NoError(t, err)
	require.False(t, imported)

	require.NoError(t, s.legacyRepo.MarkImported(ctx, "owner-1"))

	imported, err = s.legacyRepo.HasImported(ctx, "owner-1")
	require.NoError(t, err)
	require.True(t, imported)

	// Повторная пометка идемпотентна
	require.NoError(t, s.legacyRepo.MarkImported(ctx, "owner-1"))

	// Не задевает других владельцев
	imported, err = s.legacyRepo.HasImported(ctx, "owner-2")
	require.NoError(t, err)
	require.False(t, imported)
}

func (s *RepositoryTestSuite) TestPlaySessionLifecycle() {
	t := s.T()
	ctx := context.Background()

	session := &models.PlaySession{
		ID:        uuid.New(),
		FunnelID:  uuid.New(),
		OwnerID:   "owner-1",
		Data:      newTestFunnel("owner-1").Data,
		State:     models.StateAnswering,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	require.NoError(t, s.sessionRepo.Save(ctx, session, time.Minute))

	got, err := s.sessionRepo.Get(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, session.FunnelID, got.FunnelID)
	require.Equal(t, models.StateAnswering, got.State)
	require.Len(t, got.Data.Questions, 1)

	// Неизвестная сессия
	_, err = s.sessionRepo.Get(ctx, uuid.New())
	require.True(t, errors.Is(err, models.ErrSessionNotFound))

	// Сессия с коротким TTL истекает
	expiring := &models.PlaySession{ID: uuid.New(), FunnelID: session.FunnelID, State: models.StateAnswering}
	require.NoError(t, s.sessionRepo.Save(ctx, expiring, 200*time.Millisecond))
	time.Sleep(400 * time.Millisecond)
	_, err = s.sessionRepo.Get(ctx, expiring.ID)
	require.True(t, errors.Is(err, models.ErrSessionNotFound))
}

func (s *RepositoryTestSuite) TestAnswerLock() {
	t := s.T()
	ctx := context.Background()
	sessionID := uuid.New()

	// Первый захват проходит, второй внутри окна отбивается
	acquired, err := s.sessionRepo.AcquireAnswerLock(ctx, sessionID, 300*time.Millisecond)
	require.NoError(t, err)
	require.True(t, acquired)

	acquired, err = s.sessionRepo.AcquireAnswerLock(ctx, sessionID, 300*time.Millisecond)
	require.NoError(t, err)
	require.False(t, acquired)

	// После истечения окна замок отпускается сам
	time.Sleep(500 * time.Millisecond)
	acquired, err = s.sessionRepo.AcquireAnswerLock(ctx, sessionID, 300*time.Millisecond)
	require.NoError(t, err)
	require.True(t, acquired)
}
