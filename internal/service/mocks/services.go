package mocks

import (
	"context"

	"funnel-server/internal/models"
	"funnel-server/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock FunnelService
type FunnelService struct {
	mock.Mock
}

func (m *FunnelService) CreateFunnel(ctx context.Context, ownerID, name string) (*models.Funnel, error) {
	args := m.Called(ctx, ownerID, name)
	funnel, _ := args.Get(0).(*models.Funnel)
	return funnel, args.Error(1)
}
func (m *FunnelService) ListFunnels(ctx context.Context, ownerID string, isAdmin bool) ([]models.Funnel, error) {
	args := m.Called(ctx, ownerID, isAdmin)
	funnels, _ := args.Get(0).([]models.Funnel)
	return funnels, args.Error(1)
}
func (m *FunnelService) GetFunnel(ctx context.Context, id uuid.UUID, ownerID string) (*models.Funnel, error) {
	args := m.Called(ctx, id, ownerID)
	funnel, _ := args.Get(0).(*models.Funnel)
	return funnel, args.Error(1)
}
func (m *FunnelService) DeleteFunnel(ctx context.Context, id uuid.UUID, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}
func (m *FunnelService) PlayURL(funnelID uuid.UUID) string {
	args := m.Called(funnelID)
	return args.String(0)
}
func (m *FunnelService) SaveFunnelData(ctx context.Context, id uuid.UUID, ownerID string, name string, data models.FunnelData) (*models.Funnel, error) {
	args := m.Called(ctx, id, ownerID, name, data)
	funnel, _ := args.Get(0).(*models.Funnel)
	return funnel, args.Error(1)
}
func (m *FunnelService) AddQuestion(ctx context.Context, id uuid.UUID, ownerID string, question models.Question) (*models.Funnel, error) {
	args := m.Called(ctx, id, ownerID, question)
	funnel, _ := args.Get(0).(*models.Funnel)
	return funnel, args.Error(1)
}
func (m *FunnelService) UpdateQuestion(ctx context.Context, id uuid.UUID, ownerID string, question models.Question) (*models.Funnel, error) {
	args := m.Called(ctx, id, ownerID, question)
	funnel, _ := args.Get(0).(*models.Funnel)
	return funnel, args.Error(1)
}
func (m *FunnelService) DeleteQuestion(ctx context.Context, id uuid.UUID, ownerID string, questionID string) (*models.Funnel, error) {
	args := m.Called(ctx, id, ownerID, questionID)
	funnel, _ := args.Get(0).(*models.Funnel)
	return funnel, args.Error(1)
}
func (m *FunnelService) ImportQuestions(ctx context.Context, id uuid.UUID, ownerID string, questions []models.Question) (*models.Funnel, error) {
	args := m.Called(ctx, id, ownerID, questions)
	funnel, _ := args.Get(0).(*models.Funnel)
	return funnel, args.Error(1)
}
func (m *FunnelService) ImportLegacyFunnels(ctx context.Context, ownerID string, legacy []models.Funnel) ([]models.Funnel, error) {
	args := m.Called(ctx, ownerID, legacy)
	funnels, _ := args.Get(0).([]models.Funnel)
	return funnels, args.Error(1)
}

// Mock PlayerService
type PlayerService struct {
	mock.Mock
}

func (m *PlayerService) StartSession(ctx context.Context, funnelID uuid.UUID) (*models.PlaySession, error) {
	args := m.Called(ctx, funnelID)
	session, _ := args.Get(0).(*models.PlaySession)
	return session, args.Error(1)
}
func (m *PlayerService) GetSession(ctx context.Context, sessionID uuid.UUID) (*models.PlaySession, error) {
	args := m.Called(ctx, sessionID)
	session, _ := args.Get(0).(*models.PlaySession)
	return session, args.Error(1)
}
func (m *PlayerService) Answer(ctx context.Context, sessionID uuid.UUID, answerIndex int) (*service.AnswerResult, error) {
	args := m.Called(ctx, sessionID, answerIndex)
	result, _ := args.Get(0).(*service.AnswerResult)
	return result, args.Error(1)
}
