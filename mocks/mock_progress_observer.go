package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockProgressObserver is a mock implementation of port.ProgressObserver.
type MockProgressObserver struct {
	mock.Mock
}

func (m *MockProgressObserver) Event(event, detail string) {
	m.Called(event, detail)
}
