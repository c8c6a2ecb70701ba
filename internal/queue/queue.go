package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"caption-digest/internal/retry"
)

// TaskType enumerates supported task categories.
type TaskType string

const (
	TaskTypeClean     TaskType = "clean"
	TaskTypeSummarize TaskType = "summarize"
)

const defaultMaxAttempts = 5

// Task represents a unit of work passed between services.
type Task struct {
	ID          uuid.UUID
	Type        TaskType
	Payload     []byte
	Attempts    int
	MaxAttempts int
	NotBefore   time.Time
}

// VideoPayload is the body of clean and summarize tasks.
type VideoPayload struct {
	VideoID uuid.UUID `json:"video_id"`
}

// NewVideoTask builds a task of the given type for one video.
func NewVideoTask(taskType TaskType, videoID uuid.UUID) (Task, error) {
	body, err := json.Marshal(VideoPayload{VideoID: videoID})
	if err != nil {
		return Task{}, err
	}
	return Task{Type: taskType, Payload: body}, nil
}

// DecodeVideoPayload extracts the video id carried by a task.
func DecodeVideoPayload(task Task) (VideoPayload, error) {
	var p VideoPayload
	if err := json.Unmarshal(task.Payload, &p); err != nil {
		return VideoPayload{}, Permanent(fmt.Errorf("decode %s payload: %w", task.Type, err))
	}
	if p.VideoID == uuid.Nil {
		return VideoPayload{}, Permanent(fmt.Errorf("%s payload has no video id", task.Type))
	}
	return p, nil
}

type Handler func(context.Context, Task) error

// Queue exposes a minimal contract to enqueue and consume tasks.
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	Worker(ctx context.Context, taskType TaskType, handler Handler) error
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks a handler error as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// nextAttempt decides whether a failed task is re-enqueued and when.
func nextAttempt(task Task, handlerErr error, now time.Time) (Task, bool) {
	if IsPermanent(handlerErr) {
		return task, false
	}
	task.Attempts++
	if task.MaxAttempts == 0 {
		task.MaxAttempts = defaultMaxAttempts
	}
	if task.Attempts >= task.MaxAttempts {
		return task, false
	}
	task.NotBefore = now.Add(retry.CappedBackoff(task.Attempts, time.Second, time.Minute))
	return task, true
}

// EnqueueWithRetry attempts to enqueue with retries and exponential backoff.
func EnqueueWithRetry(ctx context.Context, q Queue, task Task, attempts int, base time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if err := q.Enqueue(ctx, task); err == nil {
			return nil
		} else if attempt == attempts-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry.ExponentialBackoff(attempt, base)):
		}
	}
	return nil
}
