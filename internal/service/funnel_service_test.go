package service_test

import (
	"context"
	"testing"

	"funnel-server/internal/models"
	repositoryMocks "funnel-server/internal/repository/mocks"
	"funnel-server/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFunnelService(
	repo *repositoryMocks.FunnelRepository,
	legacyRepo *repositoryMocks.LegacyImportRepository,
) service.FunnelService {
	// Нулевой интервал: коалесер пишет сразу, без таймеров
	coalescer := service.NewSaveCoalescer(repo, 0, zap.NewNop())
	return service.NewFunnelService(repo, legacyRepo, coalescer, "https://funnels.example", zap.NewNop())
}

func validQuestion() models.Question {
	return models.Question{
		Title: "Какой у вас бюджет?",
		Answers: []models.Answer{
			{Text: "До 100"},
			{Text: "Больше 100"},
		},
	}
}

func TestCreateFunnel(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates funnel with default theme", func(t *testing.T) {
		mockRepo := new(repositoryMocks.FunnelRepository)
		mockLegacy := new(repositoryMocks.LegacyImportRepository)
		svc := newFunnelService(mockRepo, mockLegacy)

		mockRepo.On("Create", ctx, mock.MatchedBy(func(f *models.Funnel) bool {
			assert.Equal(t, "Мой квиз", f.Name)
			assert.Equal(t, "owner-1", f.OwnerID)
			assert.Empty(t, f.Data.Questions)
			assert.NotEmpty(t, f.Data.PrimaryColor)
			return true
		})).Return(nil).Once()

		funnel, err := svc.CreateFunnel(ctx, "owner-1", "  Мой квиз  ")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, funnel.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Empty name rejected", func(t *testing.T) {
		mockRepo := new(repositoryMocks.FunnelRepository)
		mockLegacy := new(repositoryMocks.LegacyImportRepository)
		svc := newFunnelService(mockRepo, mockLegacy)

		_, err := svc.CreateFunnel(ctx, "owner-1", "   ")
		assert.ErrorIs(t, err, models.ErrEmptyFunnelName)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestListFunnels(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner sees only own funnels", func(t *testing.T) {
		mockRepo := new(repositoryMocks.FunnelRepository)
		mockLegacy := new(repositoryMocks.LegacyImportRepository)
		svc := newFunnelService(mockRepo, mockLegacy)

		mockRepo.On("ListByOwner", ctx, "owner-1").Return([]models.Funnel{{Name: "A"}}, nil).Once()

		funnels, err := svc.ListFunnels(ctx, "owner-1", false)
		require.NoError(t, err)
		assert.Len(t, funnels, 1)
		mockRepo.AssertNotCalled(t, "ListAll", mock.Anything)
	})

	t.Run("Admin sees everything", func(t *testing.T) {
		mockRepo := new(repositoryMocks.FunnelRepository)
		mockLegacy := new(repositoryMocks.LegacyImportRepository)
		svc := newFunnelService(mockRepo, mockLegacy)

		mockRepo.On("ListAll", ctx).Return([]models.Funnel{{Name: "A"}, {Name: "B"}}, nil).Once()

		funnels, err := svc.ListFunnels(ctx, "admin-1", true)
		require.NoError(t, err)
		assert.Len(t, funnels, 2)
	})
}

func TestPlayURL(t *testing.T) {
	svc := newFunnelService(new(repositoryMocks.FunnelRepository), new(repositoryMocks.LegacyImportRepository))
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	assert.Equal(t, "https://funnels.example/#/play/11111111-2222-3333-4444-555555555555", svc.PlayURL(id))
}

func TestAddQuestion(t *testing.T) {
	ctx := context.Background()
	ownerID := "owner-1"

	funnelWithQuestions := func(n int) *models.Funnel {
		data := models.DefaultFunnelData()
		for i := 0; i < n; i++ {
			data.Questions = append(data.Questions, models.Question{
				ID:      uuid.New().String(),
				Title:   "Вопрос",
				Type:    models.QuestionTypeSingleChoice,
				Answers: []models.Answer{{ID: uuid.New().String(), Text: "Да"}},
			})
		}
		return &models.Funnel{ID: uuid.New(), Name: "Квиз", OwnerID: ownerID, Data: data}
	}

	t.Run("Adds normalized question", func(t *testing.T) {
		mockRepo := new(repositoryMocks.FunnelRepository)
		mockLegacy := new(repositoryMocks.LegacyImportRepository)
		svc := newFunnelService(mockRepo, mockLegacy)

		funnel := funnelWithQuestions(2)
		mockRepo.On("GetByID", ctx, funnel.ID, ownerID).Return(funnel, nil).Once()
		mockRepo.On("Update", ctx, mock.MatchedBy(func(f *models.Funnel) bool {
			require.Len(t, f.Data.Questions, 3)
			added := f.Data.Questions[2]
			assert.NotEmpty(t, added.ID)
			assert.Equal(t, models.QuestionTypeSingleChoice, added.Type)
			assert.Len(t, added.Answers, 2)
			return true
		})).Return(nil).Once()

		question := validQuestion()
		question.Answers = append(question.Answers, models.Answer{Text: "   "}) // пустой вариант отбрасывается

		updated, err := svc.AddQuestion(ctx, funnel.ID, ownerID, question)
		require.NoError(t, err)
		assert.Len(t, updated.Data.Questions, 3)
	})

	t.Run("Seventh question rejected", func(t *testing.T) {
		mockRepo := new(repositoryMocks.FunnelRepository)
		mockLegacy := new(repositoryMocks.LegacyImportRepository)
		svc := newFunnelService(mockRepo, mockLegacy)

		funnel := funnelWithQuestions(models.MaxQuestions)
		mockRepo.On("GetByID", ctx, funnel.ID, ownerID).Return(funnel, nil).Once()

		_, err := svc.AddQuestion(ctx, funnel.ID, ownerID, validQuestion())
		assert.ErrorIs(t, err, models.ErrQuestionLimitReached)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Question without title rejected", func(t *testing.T) {
		mockRepo := new(repositoryMocks.FunnelRepository)
		mockLegacy := new(repositoryMocks.LegacyImportRepository)
		svc := newFunnelService(mockRepo, mockLegacy)

		funnel := funnelWithQuestions(0)
		mockRepo.On("GetByID", ctx, funnel.ID, ownerID).Return(funnel, nil).Once()

		question := validQuestion()
		question.Title = "   "
		_, err := svc.AddQuestion(ctx, funnel.ID, ownerID, question)
		assert.ErrorIs(t, err, models.ErrEmptyQuestionTitle)
	})

	t.Run("Question with only blank answers rejected", func(t *testing.T) {
		mockRepo := new(repositoryMocks.FunnelRepository)
		mockLegacy := new(repositoryMocks.LegacyImportRepository)
		svc := newFunnelService(mockRepo, mockLegacy)

		funnel := funnelWithQuestions(0)
		mockRepo.On("GetByID", ctx, funnel.ID, ownerID).Return(funnel, nil).Once()

		question := validQuestion()
		question.Answers = []models.Answer{{Text: ""}, {Text: "  "}}
		_, err := svc.AddQuestion(ctx, funnel.ID, ownerID, question)
		assert.ErrorIs(t, err, models.ErrNoValidAnswers)
	})

	t.Run("Too many answers rejected", func(t *testing.T) {
		mockRepo := new(repositoryMocks.FunnelRepository)
		mockLegacy := new(repositoryMocks.LegacyImportRepository)
		svc := newFunnelService(mockRepo, mockLegacy)

		funnel := funnelWithQuestions(0)
		mockRepo.On("GetByID", ctx, funnel.ID, ownerID).Return(funnel, nil).Once()

		question := validQuestion()
		for i := 0; i < models.MaxAnswers; i++ {
			question.Answers = append(question.Answers, models.Answer{Text: "Еще"})
		}
		_, err := svc.AddQuestion(ctx, funnel.ID, ownerID, question)
		assert.ErrorIs(t, err, models.ErrTooManyAnswers)
	})
}

func TestUpdateAndDeleteQuestion(t *testing.T) {
	ctx := context.Background()
	ownerID := "owner-1"

	newFunnel := func() *models.Funnel {
		data := models.DefaultFunnelData()
		data.Questions = []models.Question{
			{ID: "q-1", Title: "Первый", Type: models.QuestionTypeSingleChoice, Answers: []models.Answer{{ID: "a-1", Text: "Да"}}},
			{ID: "q-2", Title: "Второй", Type: models.QuestionTypeSingleChoice, Answers: []models.Answer{{ID: "a-2", Text: "Нет"}}},
		}
		return &models.Funnel{ID: uuid.New(), Name: "Квиз", OwnerID: ownerID, Data: data}
	}

	t.Run("Update replaces question in place", func(t *testing.T) {
		mockRepo := new(repositoryMocks.FunnelRepository)
		mockLegacy := new(repositoryMocks.LegacyImportRepository)
		svc := newFunnelService(mockRepo, mockLegacy)

		funnel := newFunnel()
		mockRepo.On("GetByID", ctx, funnel.ID, ownerID).Return(funnel, nil).Once()
		mockRepo.On("Update", ctx, mock.Anything).Return(nil).Once()

		question := models.Question{ID: "q-2", Title: "Обновленный", Answers: []models.Answer{{Text: "Может быть"}}}
		updated, err := svc.UpdateQuestion(ctx, funnel.ID, ownerID, question)
		require.NoError(t, err)
		assert.Equal(t, "Обновленный", updated.Data.Questions[1].Title)
		assert.Equal(t, "Первый", updated.Data.Questions[0].Title)
	})

	t.Run("Update of unknown question fails", func(t *testing.T) {
		mockRepo := new(repositoryMocks.FunnelRepository)
		mockLegacy := new(repositoryMocks.LegacyImportRepository)
		svc := newFunnelService(mockRepo, mockLegacy)

		funnel := newFunnel()
		mockRepo.On("GetByID", ctx, funnel.ID, ownerID).Return(funnel, nil).Once()

		question := models.Question{ID: "missing", Title: "X", Answers: []models.Answer{{Text: "Да"}}}
		_, err := svc.UpdateQuestion(ctx, funnel.ID, ownerID, question)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("Delete removes question preserving order", func(t *testing.T) {
		mockRepo := new(repositoryMocks.FunnelRepository)
		mockLegacy := new(repositoryMocks.LegacyImportRepository)
		svc := newFunnelService(mockRepo, mockLegacy)

		funnel := newFunnel()
		mockRepo.On("GetByID", ctx, funnel.ID, ownerID).Return(funnel, nil).Once()
		mockRepo.On("Update", ctx, mock.Anything).Return(nil).Once()

		updated, err := svc.DeleteQuestion(ctx, funnel.ID, ownerID, "q-1")
		require.NoError(t, err)
		require.Len(t, updated.Data.Questions, 1)
		assert.Equal(t, "q-2", updated.Data.Questions[0].ID)
	})

	t.Run("Delete of unknown question fails", func(t *testing.T) {
		mockRepo := new(repositoryMocks.FunnelRepository)
		mockLegacy := new(repositoryMocks.LegacyImportRepository)
		svc := newFunnelService(mockRepo, mockLegacy)

		funnel := newFunnel()
		mockRepo.On("GetByID", ctx, funnel.ID, ownerID).Return(funnel, nil).Once()

		_, err := svc.DeleteQuestion(ctx, funnel.ID, ownerID, "missing")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestImportQuestions(t *testing.T) {
	ctx := context.Background()
	ownerID := "owner-1"

	t.Run("Valid batch replaces questions with fresh IDs", func(t *testing.T) {
		mockRepo := new(repositoryMocks.FunnelRepository)
		mockLegacy := new(repositoryMocks.LegacyImportRepository)
		svc := newFunnelService(mockRepo, mockLegacy)

		funnel := &models.Funnel{ID: uuid.New(), Name: "Квиз", OwnerID: ownerID, Data: models.DefaultFunnelData()}
		mockRepo.On("GetByID", ctx, funnel.ID, ownerID).Return(funnel, nil).Once()
		mockRepo.On("Update", ctx, mock.Anything).Return(nil).Once()

		batch := []models.Question{
			{ID: "imported-id", Title: "Первый", Answers: []models.Answer{{ID: "imported-a", Text: "Да"}}},
			{Title: "Второй", Answers: []models.Answer{{Text: "Нет"}}},
		}

		updated, err := svc.ImportQuestions(ctx, funnel.ID, ownerID, batch)
		require.NoError(t, err)
		require.Len(t, updated.Data.Questions, 2)
		// Импортированные ID не переносятся
		assert.NotEqual(t, "imported-id", updated.Data.Questions[0].ID)
		assert.NotEqual(t, "imported-a", updated.Data.Questions[0].Answers[0].ID)
	})

	t.Run("Blank answers dropped, non-empty retained", func(t *testing.T) {
		mockRepo := new(repositoryMocks.FunnelRepository)
		mockLegacy := new(repositoryMocks.LegacyImportRepository)
		svc := newFunnelService(mockRepo, mockLegacy)

		funnel := &models.Funnel{ID: uuid.New(), Name: "Квиз", OwnerID: ownerID, Data: models.DefaultFunnelData()}
		mockRepo.On("GetByID", ctx, funnel.ID, ownerID).Return(funnel, nil).Once()
		mockRepo.On("Update", ctx, mock.Anything).Return(nil).Once()

		batch := []models.Question{
			{Title: "Q1", Answers: []models.Answer{{Text: "A"}, {Text: ""}}},
		}

		updated, err := svc.ImportQuestions(ctx, funnel.ID, ownerID, batch)
		require.NoError(t, err)
		require.Len(t, updated.Data.Questions, 1)
		require.Len(t, updated.Data.Questions[0].Answers, 1)
		assert.Equal(t, "A", updated.Data.Questions[0].Answers[0].Text)
	})

	t.Run("One bad question rejects the whole batch", func(t *testing.T) {
		mockRepo := new(repositoryMocks.FunnelRepository)
		mockLegacy := new(repositoryMocks.LegacyImportRepository)
		svc := newFunnelService(mockRepo, mockLegacy)

		funnel := &models.Funnel{ID: uuid.New(), Name: "Квиз", OwnerID: ownerID, Data: models.DefaultFunnelData()}
		mockRepo.On("GetByID", ctx, funnel.ID, ownerID).Return(funnel, nil).Once()

		batch := []models.Question{
			{Title: "Нормальный", Answers: []models.Answer{{Text: "Да"}}},
			{Title: "", Answers: []models.Answer{{Text: "Нет"}}},
		}

		_, err := svc.ImportQuestions(ctx, funnel.ID, ownerID, batch)
		assert.ErrorIs(t, err, models.ErrImportRejected)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Empty and oversized batches rejected", func(t *testing.T) {
		mockRepo := new(repositoryMocks.FunnelRepository)
		mockLegacy := new(repositoryMocks.LegacyImportRepository)
		svc := newFunnelService(mockRepo, mockLegacy)

		funnel := &models.Funnel{ID: uuid.New(), Name: "Квиз", OwnerID: ownerID, Data: models.DefaultFunnelData()}
		mockRepo.On("GetByID", ctx, funnel.ID, ownerID).Return(funnel, nil).Twice()

		_, err := svc.ImportQuestions(ctx, funnel.ID, ownerID, nil)
		assert.ErrorIs(t, err, models.ErrImportRejected)

		oversized := make([]models.Question, models.MaxQuestions+1)
		for i := range oversized {
			oversized[i] = models.Question{Title: "Q", Answers: []models.Answer{{Text: "A"}}}
		}
		_, err = svc.ImportQuestions(ctx, funnel.ID, ownerID, oversized)
		assert.ErrorIs(t, err, models.ErrImportRejected)
	})
}

func TestImportLegacyFunnels(t *testing.T) {
	ctx := context.Background()
	ownerID := "owner-1"

	legacyPayload := []models.Funnel{
		{Name: "Старый квиз", Data: models.FunnelData{Questions: []models.Question{
			{ID: "old-q", Title: "Вопрос", Answers: []models.Answer{{Text: "Да"}}},
		}}},
	}

	t.Run("First import succeeds and marks the flag", func(t *testing.T) {
		mockRepo := new(repositoryMocks.FunnelRepository)
		mockLegacy := new(repositoryMocks.LegacyImportRepository)
		svc := newFunnelService(mockRepo, mockLegacy)

		mockLegacy.On("HasImported", ctx, ownerID).Return(false, nil).Once()
		mockLegacy.On("MarkImported", ctx, ownerID).Return(nil).Once()
		mockRepo.On("Create", ctx, mock.MatchedBy(func(f *models.Funnel) bool {
			assert.Equal(t, ownerID, f.OwnerID)
			assert.Equal(t, "Старый квиз", f.Name)
			assert.NotEqual(t, uuid.Nil, f.ID)
			return true
		})).Return(nil).Once()

		imported, err := svc.ImportLegacyFunnels(ctx, ownerID, legacyPayload)
		require.NoError(t, err)
		assert.Len(t, imported, 1)
		mockLegacy.AssertExpectations(t)
	})

	t.Run("Second import is rejected", func(t *testing.T) {
		mockRepo := new(repositoryMocks.FunnelRepository)
		mockLegacy := new(repositoryMocks.LegacyImportRepository)
		svc := newFunnelService(mockRepo, mockLegacy)

		mockLegacy.On("HasImported", ctx, ownerID).Return(true, nil).Once()

		_, err := svc.ImportLegacyFunnels(ctx, ownerID, legacyPayload)
		assert.ErrorIs(t, err, models.ErrAlreadyImported)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		mockLegacy.AssertNotCalled(t, "MarkImported", mock.Anything, mock.Anything)
	})
}
