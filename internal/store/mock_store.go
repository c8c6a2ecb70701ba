package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"caption-digest/internal/captions"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateVideo(ctx context.Context, v NewVideo) (Video, error) {
	args := m.Called(ctx, v)
	return args.Get(0).(Video), args.Error(1)
}

func (m *MockStore) GetVideo(ctx context.Context, id uuid.UUID) (Video, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Video), args.Error(1)
}

func (m *MockStore) UpdateVideoStatus(ctx context.Context, id uuid.UUID, status VideoStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockStore) SaveCaptions(ctx context.Context, videoID uuid.UUID, items []captions.Item) error {
	args := m.Called(ctx, videoID, items)
	return args.Error(0)
}

func (m *MockStore) ListCaptions(ctx context.Context, videoID uuid.UUID) ([]captions.Item, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]captions.Item), args.Error(1)
}

func (m *MockStore) SaveTranscript(ctx context.Context, videoID uuid.UUID, text string) error {
	args := m.Called(ctx, videoID, text)
	return args.Error(0)
}

func (m *MockStore) GetTranscript(ctx context.Context, videoID uuid.UUID) (string, error) {
	args := m.Called(ctx, videoID)
	return args.String(0), args.Error(1)
}

func (m *MockStore) SaveSummary(ctx context.Context, summary Summary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockStore) GetSummary(ctx context.Context, videoID uuid.UUID) (Summary, error) {
	args := m.Called(ctx, videoID)
	return args.Get(0).(Summary), args.Error(1)
}
