package testutils

import (
	"github.com/ProsperCoded/Mini-Jira-Clone/broker"
	"github.com/stretchr/testify/mock"
)

// MockPublisher mocks broker.Publisher for testing
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(subject, key string, data []byte) error {
	args := m.Called(subject, key, data)
	return args.Error(0)
}

var _ broker.Publisher = (*MockPublisher)(nil)
