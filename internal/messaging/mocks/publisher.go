package mocks

import (
	"context"

	"funnel-server/internal/messaging"

	"github.com/stretchr/testify/mock"
)

// Mock ConversionPublisher
type ConversionPublisher struct {
	mock.Mock
}

func (m *ConversionPublisher) PublishConversion(ctx context.Context, payload messaging.ConversionEventPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}
