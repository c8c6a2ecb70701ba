package queue

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockQueue is a testify mock of Queue.
type MockQueue struct {
	mock.Mock
}

func (m *MockQueue) Enqueue(ctx context.Context, task Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockQueue) Worker(ctx context.Context, taskType TaskType, handler Handler) error {
	args := m.Called(ctx, taskType, handler)
	return args.Error(0)
}

// OnEnqueue expects an Enqueue of a task of the given type.
func (m *MockQueue) OnEnqueue(taskType TaskType) *mock.Call {
	return m.On("Enqueue", mock.Anything, mock.MatchedBy(func(task Task) bool {
		return task.Type == taskType
	}))
}
