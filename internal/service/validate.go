package service

import (
	"strings"

	"funnel-server/internal/models"

	"github.com/google/uuid"
)

// normalizeQuestion валидирует и приводит вопрос к каноничному виду:
// заголовок обрезается, пустые варианты ответов отбрасываются, тип
// принудительно single-choice. Возвращает ошибку валидации, если после
// нормализации вопрос непригоден для игры.
func normalizeQuestion(q models.Question) (models.Question, error) {
	q.Title = strings.TrimSpace(q.Title)
	if q.Title == "" {
		return models.Question{}, models.ErrEmptyQuestionTitle
	}

	if len(q.Answers) > models.MaxAnswers {
		return models.Question{}, models.ErrTooManyAnswers
	}

	answers := make([]models.Answer, 0, len(q.Answers))
	for _, a := range q.Answers {
		a.Text = strings.TrimSpace(a.Text)
		if a.Text == "" {
			continue
		}
		a.AffiliateLink = strings.TrimSpace(a.AffiliateLink)
		if a.ID == "" {
			a.ID = uuid.New().String()
		}
		answers = append(answers, a)
	}
	if len(answers) == 0 {
		return models.Question{}, models.ErrNoValidAnswers
	}

	q.Answers = answers
	q.Type = models.QuestionTypeSingleChoice
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	return q, nil
}

// normalizeImportedQuestions валидирует пакет вопросов при импорте.
// Политика "все или ничего": единственный некорректный вопрос отклоняет
// весь пакет. ID вопросов и ответов всегда генерируются заново, чтобы
// импортированный JSON не мог подменить чужие идентификаторы.
func normalizeImportedQuestions(questions []models.Question) ([]models.Question, error) {
	if len(questions) == 0 {
		return nil, models.ErrImportRejected
	}
	if len(questions) > models.MaxQuestions {
		return nil, models.ErrImportRejected
	}

	normalized := make([]models.Question, 0, len(questions))
	for _, q := range questions {
		q.ID = ""
		for i := range q.Answers {
			q.Answers[i].ID = ""
		}
		nq, err := normalizeQuestion(q)
		if err != nil {
			return nil, models.ErrImportRejected
		}
		normalized = append(normalized, nq)
	}
	return normalized, nil
}
