package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendRunCompleted(ctx context.Context, toEmail, templateName, downloadURL string) error {
	args := m.Called(ctx, toEmail, templateName, downloadURL)
	return args.Error(0)
}

func (m *MockEmailSender) SendRunFailed(ctx context.Context, toEmail, templateName, errText string) error {
	args := m.Called(ctx, toEmail, templateName, errText)
	return args.Error(0)
}
