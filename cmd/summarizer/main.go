package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"caption-digest/internal/app"
	"caption-digest/internal/cache"
	"caption-digest/internal/httputil"
	"caption-digest/internal/queue"
	"caption-digest/internal/store"
	"caption-digest/internal/summarize"
)

func main() {
	deps, err := app.BuildSummarizer()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Cache.Close()
	deps.Log.Info("summarizer worker starting", "model", deps.Config.LLMModel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeSummarize, func(ctx context.Context, task queue.Task) error {
			payload, err := queue.DecodeVideoPayload(task)
			if err != nil {
				return err
			}
			return handleSummarize(ctx, deps, payload.VideoID)
		})
	})

	g.Go(func() error {
		return httputil.ServeHealth(deps.Deps, "summarizer")
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("summarizer service stopped", "err", err)
	}
}

// handleSummarize summarizes a cleaned transcript. A summarization failure
// stores the placeholder, marks the video failed and acknowledges the task so
// other videos keep flowing.
func handleSummarize(ctx context.Context, deps app.SummarizerDeps, videoID uuid.UUID) error {
	log := deps.Log.With("video_id", videoID)

	text, err := deps.Store.GetTranscript(ctx, videoID)
	if errors.Is(err, store.ErrTranscriptNotFound) {
		if upErr := deps.Store.UpdateVideoStatus(ctx, videoID, store.StatusFailed); upErr != nil {
			return fmt.Errorf("mark video failed: %w", upErr)
		}
		return queue.Permanent(err)
	}
	if err != nil {
		return fmt.Errorf("load transcript: %w", err)
	}

	settings := app.SummarySettings(deps.Config)
	key := cache.GenerateCacheKey(settings.Model, settings.MaxOutputTokens, settings.PromptTemplate, text)

	entry, err := deps.Cache.GetSummary(ctx, key)
	if err != nil {
		log.Warn("summary cache lookup failed", "err", err)
		entry = nil
	}
	if entry != nil {
		log.Info("summary served from cache", "degraded", entry.Degraded)
	} else {
		res, err := deps.Summarizer.Summarize(ctx, text, settings)
		if sumErr, ok := summarize.IsError(err); ok {
			log.Error("summarization failed, storing placeholder", "kind", sumErr.Kind, "err", sumErr)
			return saveOutcome(ctx, deps, store.Summary{VideoID: videoID, Text: summarize.Placeholder}, store.StatusFailed)
		}
		if err != nil {
			return err
		}
		entry = &cache.Entry{Text: res.Text, Degraded: res.Degraded, Chunks: res.Chunks, FailedChunks: res.FailedChunks}
		if err := deps.Cache.SetSummary(ctx, key, entry, deps.Config.CacheTTL); err != nil {
			log.Warn("failed to cache summary", "err", err)
		}
		log.Info("video summarized", "degraded", res.Degraded, "chunks", res.Chunks, "failed_chunks", len(res.FailedChunks))
	}

	return saveOutcome(ctx, deps, store.Summary{
		VideoID:      videoID,
		Text:         entry.Text,
		Degraded:     entry.Degraded,
		Chunks:       entry.Chunks,
		FailedChunks: entry.FailedChunks,
	}, store.StatusReady)
}

func saveOutcome(ctx context.Context, deps app.SummarizerDeps, sum store.Summary, status store.VideoStatus) error {
	if err := deps.Store.SaveSummary(ctx, sum); err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	if err := deps.Store.UpdateVideoStatus(ctx, sum.VideoID, status); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}
