package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"caption-digest/internal/app"
	"caption-digest/internal/captions"
	"caption-digest/internal/httputil"
	"caption-digest/internal/queue"
	"caption-digest/internal/store"
	"caption-digest/internal/transcript"
)

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	deps.Log.Info("cleaner worker starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeClean, func(ctx context.Context, task queue.Task) error {
			payload, err := queue.DecodeVideoPayload(task)
			if err != nil {
				return err
			}
			return handleClean(ctx, deps, payload.VideoID)
		})
	})

	g.Go(func() error {
		return httputil.ServeHealth(deps, "cleaner")
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("cleaner service stopped", "err", err)
	}
}

// handleClean turns stored captions into a cleaned transcript and hands the
// video to the summarizer. Videos without caption text fail permanently.
func handleClean(ctx context.Context, deps app.Deps, videoID uuid.UUID) error {
	log := deps.Log.With("video_id", videoID)

	items, err := store.CaptionSource{Store: deps.Store}.Captions(ctx, videoID.String())
	if errors.Is(err, captions.ErrNoCaptions) {
		return failVideo(ctx, deps, videoID, err)
	}
	if err != nil {
		return fmt.Errorf("load captions: %w", err)
	}

	text := transcript.Prepare(items)
	if text == "" {
		return failVideo(ctx, deps, videoID, captions.ErrNoCaptions)
	}
	if err := deps.Store.SaveTranscript(ctx, videoID, text); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	if err := deps.Store.UpdateVideoStatus(ctx, videoID, store.StatusCleaned); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	task, err := queue.NewVideoTask(queue.TaskTypeSummarize, videoID)
	if err != nil {
		return err
	}
	if err := queue.EnqueueWithRetry(ctx, deps.Queue, task, 3, 200*time.Millisecond); err != nil {
		return fmt.Errorf("enqueue summarize task: %w", err)
	}
	log.Info("transcript cleaned", "captions", len(items), "chars", len(text))
	return nil
}

func failVideo(ctx context.Context, deps app.Deps, videoID uuid.UUID, cause error) error {
	if err := deps.Store.UpdateVideoStatus(ctx, videoID, store.StatusFailed); err != nil {
		return fmt.Errorf("mark video failed: %w", err)
	}
	return queue.Permanent(cause)
}
