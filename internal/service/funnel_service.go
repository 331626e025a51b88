package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"funnel-server/internal/models"
	"funnel-server/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FunnelService определяет бизнес-логику дашборда и редактора воронок.
type FunnelService interface {
	// CreateFunnel создает пустую воронку с дефолтной темой.
	CreateFunnel(ctx context.Context, ownerID, name string) (*models.Funnel, error)

	// ListFunnels возвращает воронки владельца; админ видит все.
	ListFunnels(ctx context.Context, ownerID string, isAdmin bool) ([]models.Funnel, error)

	// GetFunnel возвращает воронку владельца.
	GetFunnel(ctx context.Context, id uuid.UUID, ownerID string) (*models.Funnel, error)

	// DeleteFunnel удаляет воронку владельца.
	DeleteFunnel(ctx context.Context, id uuid.UUID, ownerID string) error

	// PlayURL строит публичную ссылку на прохождение воронки.
	PlayURL(funnelID uuid.UUID) string

	// SaveFunnelData перезаписывает данные воронки через коалесер отложенных записей.
	SaveFunnelData(ctx context.Context, id uuid.UUID, ownerID string, name string, data models.FunnelData) (*models.Funnel, error)

	// AddQuestion добавляет вопрос в конец списка (не больше шести).
	AddQuestion(ctx context.Context, id uuid.UUID, ownerID string, question models.Question) (*models.Funnel, error)

	// UpdateQuestion заменяет вопрос по его ID.
	UpdateQuestion(ctx context.Context, id uuid.UUID, ownerID string, question models.Question) (*models.Funnel, error)

	// DeleteQuestion удаляет вопрос по его ID.
	DeleteQuestion(ctx context.Context, id uuid.UUID, ownerID string, questionID string) (*models.Funnel, error)

	// ImportQuestions заменяет все вопросы воронки пакетом из JSON-импорта.
	// Все или ничего: один некорректный вопрос отклоняет весь пакет.
	ImportQuestions(ctx context.Context, id uuid.UUID, ownerID string, questions []models.Question) (*models.Funnel, error)

	// ImportLegacyFunnels выполняет одноразовую миграцию воронок из старого
	// клиентского хранилища. Повторный вызов возвращает ErrAlreadyImported.
	ImportLegacyFunnels(ctx context.Context, ownerID string, legacy []models.Funnel) ([]models.Funnel, error)
}

type funnelServiceImpl struct {
	repo       repository.FunnelRepository
	legacyRepo repository.LegacyImportRepository
	coalescer  *SaveCoalescer
	baseURL    string
	logger     *zap.Logger
}

var _ FunnelService = (*funnelServiceImpl)(nil)

func NewFunnelService(
	repo repository.FunnelRepository,
	legacyRepo repository.LegacyImportRepository,
	coalescer *SaveCoalescer,
	baseURL string,
	logger *zap.Logger,
) FunnelService {
	return &funnelServiceImpl{
		repo:       repo,
		legacyRepo: legacyRepo,
		coalescer:  coalescer,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.Named("FunnelService"),
	}
}

func (s *funnelServiceImpl) CreateFunnel(ctx context.Context, ownerID, name string) (*models.Funnel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.ErrEmptyFunnelName
	}

	now := time.Now().UTC()
	funnel := &models.Funnel{
		ID:        uuid.New(),
		Name:      name,
		OwnerID:   ownerID,
		Data:      models.DefaultFunnelData(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, funnel); err != nil {
		return nil, fmt.Errorf("ошибка создания воронки: %w", err)
	}
	s.logger.Info("Funnel created", zap.String("funnelID", funnel.ID.String()), zap.String("ownerID", ownerID))
	return funnel, nil
}

func (s *funnelServiceImpl) ListFunnels(ctx context.Context, ownerID string, isAdmin bool) ([]models.Funnel, error) {
	if isAdmin {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *funnelServiceImpl) GetFunnel(ctx context.Context, id uuid.UUID, ownerID string) (*models.Funnel, error) {
	return s.repo.GetByID(ctx, id, ownerID)
}

func (s *funnelServiceImpl) DeleteFunnel(ctx context.Context, id uuid.UUID, ownerID string) error {
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return err
	}
	s.logger.Info("Funnel deleted", zap.String("funnelID", id.String()), zap.String("ownerID", ownerID))
	return nil
}

// PlayURL строит ссылку вида <base>/#/play/<funnelId> (hash-роутинг плеера).
func (s *funnelServiceImpl) PlayURL(funnelID uuid.UUID) string {
	return fmt.Sprintf("%s/#/play/%s", s.baseURL, funnelID)
}

func (s *funnelServiceImpl) SaveFunnelData(ctx context.Context, id uuid.UUID, ownerID string, name string, data models.FunnelData) (*models.Funnel, error) {
	funnel, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		funnel.Name = name
	}
	if len(data.Questions) > models.MaxQuestions {
		return nil, models.ErrQuestionLimitReached
	}
	funnel.Data = data
	funnel.UpdatedAt = time.Now().UTC()

	if err := s.coalescer.Schedule(ctx, funnel); err != nil {
		return nil, fmt.Errorf("ошибка сохранения данных воронки: %w", err)
	}
	return funnel, nil
}

func (s *funnelServiceImpl) AddQuestion(ctx context.Context, id uuid.UUID, ownerID string, question models.Question) (*models.Funnel, error) {
	funnel, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if len(funnel.Data.Questions) >= models.MaxQuestions {
		s.logger.Warn("Question limit reached", zap.String("funnelID", id.String()))
		return nil, models.ErrQuestionLimitReached
	}

	question.ID = ""
	normalized, err := normalizeQuestion(question)
	if err != nil {
		return nil, err
	}

	funnel.Data.Questions = append(funnel.Data.Questions, normalized)
	return s.persist(ctx, funnel)
}

func (s *funnelServiceImpl) UpdateQuestion(ctx context.Context, id uuid.UUID, ownerID string, question models.Question) (*models.Funnel, error) {
	funnel, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	normalized, err := normalizeQuestion(question)
	if err != nil {
		return nil, err
	}

	replaced := false
	for i := range funnel.Data.Questions {
		if funnel.Data.Questions[i].ID == normalized.ID {
			funnel.Data.Questions[i] = normalized
			replaced = true
			break
		}
	}
	if !replaced {
		return nil, models.ErrNotFound
	}
	return s.persist(ctx, funnel)
}

func (s *funnelServiceImpl) DeleteQuestion(ctx context.Context, id uuid.UUID, ownerID string, questionID string) (*models.Funnel, error) {
	funnel, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	questions := funnel.Data.Questions
	idx := -1
	for i := range questions {
		if questions[i].ID == questionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, models.ErrNotFound
	}

	funnel.Data.Questions = append(questions[:idx], questions[idx+1:]...)
	return s.persist(ctx, funnel)
}

func (s *funnelServiceImpl) ImportQuestions(ctx context.Context, id uuid.UUID, ownerID string, questions []models.Question) (*models.Funnel, error) {
	funnel, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	normalized, err := normalizeImportedQuestions(questions)
	if err != nil {
		s.logger.Warn("Import rejected", zap.String("funnelID", id.String()), zap.Error(err))
		return nil, err
	}

	funnel.Data.Questions = normalized
	s.logger.Info("Questions imported", zap.String("funnelID", id.String()), zap.Int("count", len(normalized)))
	return s.persist(ctx, funnel)
}

// ImportLegacyFunnels мигрирует воронки из старого клиентского хранилища.
// Защита от повторов: флаг в legacy_imports ставится до записи воронок,
// так что даже параллельные запросы не продублируют данные.
func (s *funnelServiceImpl) ImportLegacyFunnels(ctx context.Context, ownerID string, legacy []models.Funnel) ([]models.Funnel, error) {
	imported, err := s.legacyRepo.HasImported(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки статуса миграции: %w", err)
	}
	if imported {
		s.logger.Info("Legacy import skipped: already done", zap.String("ownerID", ownerID))
		return nil, models.ErrAlreadyImported
	}

	if err := s.legacyRepo.MarkImported(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("ошибка фиксации миграции: %w", err)
	}

	now := time.Now().UTC()
	result := make([]models.Funnel, 0, len(legacy))
	for _, lf := range legacy {
		name := strings.TrimSpace(lf.Name)
		if name == "" {
			name = "Imported funnel"
		}
		if len(lf.Data.Questions) > models.MaxQuestions {
			lf.Data.Questions = lf.Data.Questions[:models.MaxQuestions]
		}

		funnel := &models.Funnel{
			ID:        uuid.New(), // старые ID не переносим
			Name:      name,
			OwnerID:   ownerID,
			Data:      lf.Data,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Create(ctx, funnel); err != nil {
			s.logger.Error("Failed to import legacy funnel", zap.String("ownerID", ownerID), zap.Error(err))
			return nil, fmt.Errorf("ошибка миграции воронки: %w", err)
		}
		result = append(result, *funnel)
	}

	s.logger.Info("Legacy funnels imported", zap.String("ownerID", ownerID), zap.Int("count", len(result)))
	return result, nil
}

func (s *funnelServiceImpl) persist(ctx context.Context, funnel *models.Funnel) (*models.Funnel, error) {
	funnel.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, funnel); err != nil {
		return nil, err
	}
	return funnel, nil
}
