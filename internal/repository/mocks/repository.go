package mocks

import (
	"context"
	"time"

	"funnel-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock FunnelRepository
type FunnelRepository struct {
	mock.Mock
}

func (m *FunnelRepository) Create(ctx context.Context, funnel *models.Funnel) error {
	args := m.Called(ctx, funnel)
	return args.Error(0)
}
func (m *FunnelRepository) GetByID(ctx context.Context, id uuid.UUID, ownerID string) (*models.Funnel, error) {
	args := m.Called(ctx, id, ownerID)
	funnel, _ := args.Get(0).(*models.Funnel)
	return funnel, args.Error(1)
}
func (m *FunnelRepository) GetByIDPublic(ctx context.Context, id uuid.UUID) (*models.Funnel, error) {
	args := m.Called(ctx, id)
	funnel, _ := args.Get(0).(*models.Funnel)
	return funnel, args.Error(1)
}
func (m *FunnelRepository) Update(ctx context.Context, funnel *models.Funnel) error {
	args := m.Called(ctx, funnel)
	return args.Error(0)
}
func (m *FunnelRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Funnel, error) {
	args := m.Called(ctx, ownerID)
	funnels, _ := args.Get(0).([]models.Funnel)
	return funnels, args.Error(1)
}
func (m *FunnelRepository) ListAll(ctx context.Context) ([]models.Funnel, error) {
	args := m.Called(ctx)
	funnels, _ := args.Get(0).([]models.Funnel)
	return funnels, args.Error(1)
}
func (m *FunnelRepository) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

// Mock PlaySessionRepository
type PlaySessionRepository struct {
	mock.Mock
}

func (m *PlaySessionRepository) Save(ctx context.Context, session *models.PlaySession, ttl time.Duration) error {
	args := m.Called(ctx, session, ttl)
	return args.Error(0)
}
func (m *PlaySessionRepository) Get(ctx context.Context, sessionID uuid.UUID) (*models.PlaySession, error) {
	args := m.Called(ctx, sessionID)
	session, _ := args.Get(0).(*models.PlaySession)
	return session, args.Error(1)
}
func (m *PlaySessionRepository) AcquireAnswerLock(ctx context.Context, sessionID uuid.UUID, window time.Duration) (bool, error) {
	args := m.Called(ctx, sessionID, window)
	return args.Bool(0), args.Error(1)
}

// Mock LegacyImportRepository
type LegacyImportRepository struct {
	mock.Mock
}

func (m *LegacyImportRepository) HasImported(ctx context.Context, ownerID string) (bool, error) {
	args := m.Called(ctx, ownerID)
	return args.Bool(0), args.Error(1)
}
func (m *LegacyImportRepository) MarkImported(ctx context.Context, ownerID string) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}
