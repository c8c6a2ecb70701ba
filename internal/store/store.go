package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"caption-digest/internal/captions"
)

type VideoStatus string

const (
	StatusProcessing VideoStatus = "processing"
	StatusCleaned    VideoStatus = "cleaned"
	StatusReady      VideoStatus = "ready"
	StatusFailed     VideoStatus = "failed"
)

var (
	ErrVideoNotFound      = errors.New("video not found")
	ErrTranscriptNotFound = errors.New("transcript not found")
	ErrSummaryNotFound    = errors.New("summary not found")
)

type Video struct {
	ID         uuid.UUID
	ExternalID string
	Title      string
	URL        string
	Status     VideoStatus
	CreatedAt  time.Time
}

// NewVideo is the data supplied when a video is registered.
type NewVideo struct {
	ExternalID string
	Title      string
	URL        string
}

type Summary struct {
	VideoID      uuid.UUID
	Text         string
	Degraded     bool
	Chunks       int
	FailedChunks []int
}

// Store defines the persistence contract shared by the services.
type Store interface {
	CreateVideo(ctx context.Context, v NewVideo) (Video, error)
	GetVideo(ctx context.Context, id uuid.UUID) (Video, error)
	UpdateVideoStatus(ctx context.Context, id uuid.UUID, status VideoStatus) error
	SaveCaptions(ctx context.Context, videoID uuid.UUID, items []captions.Item) error
	ListCaptions(ctx context.Context, videoID uuid.UUID) ([]captions.Item, error)
	SaveTranscript(ctx context.Context, videoID uuid.UUID, text string) error
	GetTranscript(ctx context.Context, videoID uuid.UUID) (string, error)
	SaveSummary(ctx context.Context, summary Summary) error
	GetSummary(ctx context.Context, videoID uuid.UUID) (Summary, error)
}

// CaptionSource serves stored caption items through captions.Source.
type CaptionSource struct {
	Store Store
}

func (s CaptionSource) Captions(ctx context.Context, videoID string) ([]captions.Item, error) {
	id, err := uuid.Parse(videoID)
	if err != nil {
		return nil, fmt.Errorf("invalid video id %q: %w", videoID, err)
	}
	items, err := s.Store.ListCaptions(ctx, id)
	if err != nil {
		return nil, err
	}
	if captions.JoinText(items) == "" {
		return nil, captions.ErrNoCaptions
	}
	return items, nil
}
