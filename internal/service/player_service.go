package service

import (
	"context"
	"fmt"
	"time"

	"funnel-server/internal/messaging"
	"funnel-server/internal/models"
	"funnel-server/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AnswerResult - исход принятого ответа: либо следующий вопрос,
// либо терминальное состояние (возможно, с редирект-ссылкой).
type AnswerResult struct {
	State         models.PlaySessionState
	QuestionIndex int
	Question      *models.Question
	RedirectLink  string
}

// PlayerService определяет бизнес-логику прохождения воронки игроком.
type PlayerService interface {
	// StartSession создает сессию прохождения воронки со снимком ее данных.
	StartSession(ctx context.Context, funnelID uuid.UUID) (*models.PlaySession, error)

	// GetSession возвращает активную сессию.
	GetSession(ctx context.Context, sessionID uuid.UUID) (*models.PlaySession, error)

	// Answer принимает ответ на текущий вопрос сессии и выполняет переход.
	Answer(ctx context.Context, sessionID uuid.UUID, answerIndex int) (*AnswerResult, error)
}

type playerServiceImpl struct {
	funnels      repository.FunnelRepository
	sessions     repository.PlaySessionRepository
	publisher    messaging.ConversionPublisher
	sessionTTL   time.Duration
	lockWindow   time.Duration
	fallbackLink string
	logger       *zap.Logger
}

var _ PlayerService = (*playerServiceImpl)(nil)

func NewPlayerService(
	funnels repository.FunnelRepository,
	sessions repository.PlaySessionRepository,
	publisher messaging.ConversionPublisher,
	sessionTTL time.Duration,
	lockWindow time.Duration,
	fallbackLink string,
	logger *zap.Logger,
) PlayerService {
	return &playerServiceImpl{
		funnels:      funnels,
		sessions:     sessions,
		publisher:    publisher,
		sessionTTL:   sessionTTL,
		lockWindow:   lockWindow,
		fallbackLink: fallbackLink,
		logger:       logger.Named("PlayerService"),
	}
}

// StartSession снимает слепок данных воронки и открывает сессию на первом
// вопросе. Воронка без вопросов не играется: ErrFunnelNotConfigured.
func (s *playerServiceImpl) StartSession(ctx context.Context, funnelID uuid.UUID) (*models.PlaySession, error) {
	funnel, err := s.funnels.GetByIDPublic(ctx, funnelID)
	if err != nil {
		return nil, err
	}

	if len(funnel.Data.Questions) == 0 {
		s.logger.Warn("Attempted to play funnel without questions", zap.String("funnelID", funnelID.String()))
		return nil, models.ErrFunnelNotConfigured
	}

	now := time.Now().UTC()
	session := &models.PlaySession{
		ID:            uuid.New(),
		FunnelID:      funnel.ID,
		OwnerID:       funnel.OwnerID,
		Data:          funnel.Data,
		QuestionIndex: 0,
		State:         models.StateAnswering,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.sessions.Save(ctx, session, s.sessionTTL); err != nil {
		return nil, fmt.Errorf("ошибка создания игровой сессии: %w", err)
	}

	playSessionsStartedTotal.Inc()
	s.logger.Info("Play session started",
		zap.String("sessionID", session.ID.String()),
		zap.String("funnelID", funnel.ID.String()),
		zap.Int("questions", len(funnel.Data.Questions)),
	)
	return session, nil
}

func (s *playerServiceImpl) GetSession(ctx context.Context, sessionID uuid.UUID) (*models.PlaySession, error) {
	return s.sessions.Get(ctx, sessionID)
}

// Answer принимает ровно один ответ на текущий вопрос. Пока окно блокировки
// не истекло, повторные ответы отклоняются с ErrAnswerLocked. Переходы:
//   - последний (шестой) вопрос полной воронки -> redirecting с вычисленной ссылкой;
//   - есть следующий вопрос -> answering со сдвигом индекса;
//   - вопросы кончились раньше шестого -> completed без редиректа.
func (s *playerServiceImpl) Answer(ctx context.Context, sessionID uuid.UUID, answerIndex int) (*AnswerResult, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	logFields := []zap.Field{
		zap.String("sessionID", sessionID.String()),
		zap.Int("questionIndex", session.QuestionIndex),
		zap.Int("answerIndex", answerIndex),
	}

	if session.State.Terminal() {
		s.logger.Warn("Answer on finished session rejected", logFields...)
		answersRejectedTotal.WithLabelValues("finished").Inc()
		return nil, models.ErrSessionFinished
	}

	acquired, err := s.sessions.AcquireAnswerLock(ctx, sessionID, s.lockWindow)
	if err != nil {
		return nil, fmt.Errorf("ошибка блокировки ответа: %w", err)
	}
	if !acquired {
		s.logger.Debug("Answer rejected: lock window still open", logFields...)
		answersRejectedTotal.WithLabelValues("locked").Inc()
		return nil, models.ErrAnswerLocked
	}

	questions := session.Data.Questions
	current := questions[session.QuestionIndex]
	if answerIndex < 0 || answerIndex >= len(current.Answers) {
		s.logger.Warn("Answer index out of range", logFields...)
		answersRejectedTotal.WithLabelValues("invalid_index").Inc()
		return nil, models.ErrInvalidAnswerIndex
	}
	answer := current.Answers[answerIndex]
	answersAcceptedTotal.Inc()

	result := &AnswerResult{}
	switch {
	case session.QuestionIndex == models.MaxQuestions-1 && len(questions) == models.MaxQuestions:
		// Полная воронка пройдена до конца: единственный путь к редиректу.
		link := BuildRedirectLink(&answer, &session.Data, s.fallbackLink)
		session.State = models.StateRedirecting
		result.State = models.StateRedirecting
		result.RedirectLink = link
		redirectsTotal.Inc()

		s.publishConversion(ctx, session, link)
		s.logger.Info("Funnel completed with redirect", append(logFields, zap.String("redirectLink", link))...)

	case session.QuestionIndex+1 < len(questions):
		session.QuestionIndex++
		next := questions[session.QuestionIndex]
		result.State = models.StateAnswering
		result.QuestionIndex = session.QuestionIndex
		result.Question = &next

	default:
		// Вопросы кончились раньше шестого: терминал без редиректа.
		session.State = models.StateCompleted
		result.State = models.StateCompleted
		completionsWithoutRedirectTotal.Inc()
		s.logger.Info("Funnel completed without redirect", logFields...)
	}

	session.UpdatedAt = time.Now().UTC()
	if err := s.sessions.Save(ctx, session, s.sessionTTL); err != nil {
		return nil, fmt.Errorf("ошибка сохранения игровой сессии: %w", err)
	}
	return result, nil
}

// publishConversion отправляет событие конверсии. Сбой публикации не должен
// ломать редирект игроку: ошибка только логируется.
func (s *playerServiceImpl) publishConversion(ctx context.Context, session *models.PlaySession, link string) {
	payload := messaging.ConversionEventPayload{
		SessionID:      session.ID,
		FunnelID:       session.FunnelID,
		OwnerID:        session.OwnerID,
		RedirectLink:   link,
		ConversionGoal: session.Data.ConversionGoal,
		OccurredAt:     time.Now().UTC(),
	}
	if err := s.publisher.PublishConversion(ctx, payload); err != nil {
		s.logger.Error("Failed to publish conversion event",
			zap.String("sessionID", session.ID.String()),
			zap.Error(err),
		)
	}
}
