package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"caption-digest/internal/app"
	"caption-digest/internal/captions"
	"caption-digest/internal/queue"
	"caption-digest/internal/store"
)

func newTestDeps(st store.Store, q queue.Queue) app.Deps {
	return app.Deps{
		Store: st,
		Queue: q,
		Log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestHandleClean(t *testing.T) {
	videoID := uuid.New()
	rawItems := []captions.Item{
		{Text: "um so the the cat"},
		{Text: "[0:01] sat on the mat you know"},
	}

	tests := []struct {
		name          string
		setup         func(*store.MockStore, *queue.MockQueue)
		wantErr       bool
		wantPermanent bool
	}{
		{
			name: "cleans and enqueues summarize",
			setup: func(s *store.MockStore, q *queue.MockQueue) {
				s.On("ListCaptions", mock.Anything, videoID).Return(rawItems, nil).Once()
				s.On("SaveTranscript", mock.Anything, videoID, "The cat sat on the mat").Return(nil).Once()
				s.On("UpdateVideoStatus", mock.Anything, videoID, store.StatusCleaned).Return(nil).Once()
				q.On("Enqueue", mock.Anything, mock.MatchedBy(func(task queue.Task) bool {
					p, err := queue.DecodeVideoPayload(task)
					return task.Type == queue.TaskTypeSummarize && err == nil && p.VideoID == videoID
				})).Return(nil).Once()
			},
		},
		{
			name: "no captions fails the video permanently",
			setup: func(s *store.MockStore, q *queue.MockQueue) {
				s.On("ListCaptions", mock.Anything, videoID).Return([]captions.Item{}, nil).Once()
				s.On("UpdateVideoStatus", mock.Anything, videoID, store.StatusFailed).Return(nil).Once()
			},
			wantErr:       true,
			wantPermanent: true,
		},
		{
			name: "captions that clean to nothing fail permanently",
			setup: func(s *store.MockStore, q *queue.MockQueue) {
				s.On("ListCaptions", mock.Anything, videoID).Return([]captions.Item{{Text: "[0:01] um"}}, nil).Once()
				s.On("UpdateVideoStatus", mock.Anything, videoID, store.StatusFailed).Return(nil).Once()
			},
			wantErr:       true,
			wantPermanent: true,
		},
		{
			name: "store failure is retried",
			setup: func(s *store.MockStore, q *queue.MockQueue) {
				s.On("ListCaptions", mock.Anything, videoID).Return(nil, errors.New("database error")).Once()
			},
			wantErr: true,
		},
		{
			name: "save transcript failure is retried",
			setup: func(s *store.MockStore, q *queue.MockQueue) {
				s.On("ListCaptions", mock.Anything, videoID).Return(rawItems, nil).Once()
				s.On("SaveTranscript", mock.Anything, videoID, mock.Anything).Return(errors.New("disk full")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := new(store.MockStore)
			mockQueue := new(queue.MockQueue)
			tt.setup(mockStore, mockQueue)

			err := handleClean(context.Background(), newTestDeps(mockStore, mockQueue), videoID)

			if (err != nil) != tt.wantErr {
				t.Fatalf("handleClean() error = %v, wantErr %v", err, tt.wantErr)
			}
			if queue.IsPermanent(err) != tt.wantPermanent {
				t.Errorf("permanent = %v, want %v (%v)", queue.IsPermanent(err), tt.wantPermanent, err)
			}
			mockStore.AssertExpectations(t)
			mockQueue.AssertExpectations(t)
		})
	}
}
