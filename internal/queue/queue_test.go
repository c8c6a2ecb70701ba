package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestVideoTaskRoundTrip(t *testing.T) {
	id := uuid.New()
	task, err := NewVideoTask(TaskTypeSummarize, id)
	require.NoError(t, err)

	if task.Type != TaskTypeSummarize {
		t.Errorf("unexpected type %q", task.Type)
	}
	p, err := DecodeVideoPayload(task)
	require.NoError(t, err)
	if p.VideoID != id {
		t.Errorf("video id = %s, want %s", p.VideoID, id)
	}
}

func TestDecodeVideoPayloadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"not json", []byte("{")},
		{"missing id", []byte(`{}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeVideoPayload(Task{Type: TaskTypeClean, Payload: tt.payload})
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsPermanent(err) {
				t.Errorf("malformed payloads should not be retried: %v", err)
			}
		})
	}
}

func TestNextAttempt(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	next, ok := nextAttempt(Task{Type: TaskTypeClean}, errors.New("db down"), now)
	if !ok {
		t.Fatal("first failure should be retried")
	}
	if next.Attempts != 1 || next.MaxAttempts != defaultMaxAttempts {
		t.Errorf("unexpected attempts %d/%d", next.Attempts, next.MaxAttempts)
	}
	if want := now.Add(2 * time.Second); !next.NotBefore.Equal(want) {
		t.Errorf("NotBefore = %v, want %v", next.NotBefore, want)
	}

	if _, ok := nextAttempt(Task{Attempts: 4, MaxAttempts: 5}, errors.New("again"), now); ok {
		t.Error("task at its attempt limit should not be retried")
	}
	if _, ok := nextAttempt(Task{}, Permanent(errors.New("no captions")), now); ok {
		t.Error("permanent errors should not be retried")
	}
}

func TestPermanentWrapping(t *testing.T) {
	base := errors.New("boom")
	err := Permanent(base)
	if !errors.Is(err, base) {
		t.Error("Permanent must keep the cause in the chain")
	}
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
	if IsPermanent(base) {
		t.Error("plain error reported as permanent")
	}
}

func TestEnqueueWithRetry(t *testing.T) {
	task := Task{Type: TaskTypeClean}

	q := new(MockQueue)
	q.On("Enqueue", mock.Anything, task).Return(errors.New("nats unavailable")).Once()
	q.On("Enqueue", mock.Anything, task).Return(nil).Once()

	err := EnqueueWithRetry(context.Background(), q, task, 3, time.Millisecond)
	require.NoError(t, err)
	q.AssertNumberOfCalls(t, "Enqueue", 2)
}

func TestEnqueueWithRetryGivesUp(t *testing.T) {
	task := Task{Type: TaskTypeSummarize}
	q := new(MockQueue)
	q.On("Enqueue", mock.Anything, task).Return(errors.New("nats unavailable"))

	err := EnqueueWithRetry(context.Background(), q, task, 2, time.Millisecond)
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	q.AssertNumberOfCalls(t, "Enqueue", 2)
}
