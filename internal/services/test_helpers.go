package services

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MockDatasetStatus is a mock for the DatasetStatus interface
type MockDatasetStatus struct {
	mock.Mock
}

func (m *MockDatasetStatus) Ready() bool {
	return m.Called().Bool(0)
}

func (m *MockDatasetStatus) LoadedAt() (time.Time, string) {
	args := m.Called()
	return args.Get(0).(time.Time), args.String(1)
}

// MockClientCounter is a mock for the ClientCounter interface
type MockClientCounter struct {
	mock.Mock
}

func (m *MockClientCounter) ClientCount() int {
	return m.Called().Int(0)
}
