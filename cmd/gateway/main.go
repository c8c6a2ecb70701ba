package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"caption-digest/internal/app"
	"caption-digest/internal/captions"
	"caption-digest/internal/httputil"
	"caption-digest/internal/note"
	"caption-digest/internal/queue"
	"caption-digest/internal/store"
)

const maxBatchSize = 50

type videoRequest struct {
	VideoID  string          `json:"video_id" validate:"required,max=128"`
	Title    string          `json:"title" validate:"max=500"`
	URL      string          `json:"url" validate:"omitempty,url"`
	Captions []captions.Item `json:"captions" validate:"required,min=1,dive"`
}

// Videos are validated one by one so a bad entry does not reject the batch.
type batchRequest struct {
	Videos []videoRequest `json:"videos" validate:"required,min=1,max=50"`
}

type batchResult struct {
	VideoID string            `json:"video_id"`
	ID      string            `json:"id,omitempty"`
	Status  store.VideoStatus `json:"status,omitempty"`
	Error   string            `json:"error,omitempty"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("gateway listening", "addr", addr)
	if err := http.ListenAndServe(addr, newRouter(deps)); err != nil {
		deps.Log.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func newRouter(deps app.Deps) http.Handler {
	r := httputil.NewRouter(deps.Log)
	r.Post("/api/videos", submitHandler(deps))
	r.Post("/api/batches", batchHandler(deps))
	r.Get("/api/videos/{id}/transcript", transcriptHandler(deps))
	r.Get("/api/videos/{id}/summary", summaryHandler(deps))
	r.Get("/api/videos/{id}/note", noteHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps))
	return r
}

func submitHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req videoRequest
		if err := httputil.DecodeJSON(w, r, deps.Config.MaxRequestBytes, &req); err != nil {
			httputil.Fail(deps.Log, w, err.Error(), err, http.StatusBadRequest)
			return
		}
		video, err := acceptVideo(r.Context(), deps, req)
		if err != nil {
			httputil.Fail(deps.Log.With("video_id", req.VideoID), w, "failed to accept video; please retry", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
			"id":       video.ID.String(),
			"video_id": video.ExternalID,
			"status":   video.Status,
		})
	}
}

func batchHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req batchRequest
		if err := httputil.DecodeJSON(w, r, deps.Config.MaxRequestBytes, &req); err != nil {
			httputil.Fail(deps.Log, w, err.Error(), err, http.StatusBadRequest)
			return
		}

		results := make([]batchResult, 0, len(req.Videos))
		accepted := 0
		for _, v := range req.Videos {
			res := batchResult{VideoID: v.VideoID}
			if err := httputil.Validate(v); err != nil {
				res.Error = err.Error()
				results = append(results, res)
				continue
			}
			video, err := acceptVideo(r.Context(), deps, v)
			if err != nil {
				deps.Log.Error("batch video rejected", "video_id", v.VideoID, "err", err)
				res.Error = "failed to accept video"
				results = append(results, res)
				continue
			}
			res.ID = video.ID.String()
			res.Status = video.Status
			results = append(results, res)
			accepted++
		}

		httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
			"accepted": accepted,
			"rejected": len(req.Videos) - accepted,
			"results":  results,
		})
	}
}

// acceptVideo persists the video and its captions, then hands it to the
// cleaner. A video that cannot be enqueued is marked failed.
func acceptVideo(ctx context.Context, deps app.Deps, req videoRequest) (store.Video, error) {
	video, err := deps.Store.CreateVideo(ctx, store.NewVideo{
		ExternalID: req.VideoID,
		Title:      req.Title,
		URL:        req.URL,
	})
	if err != nil {
		return store.Video{}, fmt.Errorf("persist video: %w", err)
	}
	if err := deps.Store.SaveCaptions(ctx, video.ID, req.Captions); err != nil {
		markFailed(ctx, deps, video.ID)
		return store.Video{}, fmt.Errorf("persist captions: %w", err)
	}
	task, err := queue.NewVideoTask(queue.TaskTypeClean, video.ID)
	if err != nil {
		markFailed(ctx, deps, video.ID)
		return store.Video{}, err
	}
	if err := queue.EnqueueWithRetry(ctx, deps.Queue, task, 3, 200*time.Millisecond); err != nil {
		markFailed(ctx, deps, video.ID)
		return store.Video{}, fmt.Errorf("enqueue clean task: %w", err)
	}
	deps.Log.Info("video accepted", "video_id", video.ID, "external_id", req.VideoID, "captions", len(req.Captions))
	return video, nil
}

func markFailed(ctx context.Context, deps app.Deps, id uuid.UUID) {
	if err := deps.Store.UpdateVideoStatus(ctx, id, store.StatusFailed); err != nil {
		deps.Log.Error("failed to mark video failed", "video_id", id, "err", err)
	}
}

func parseVideoID(deps app.Deps, w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(deps.Log, w, "invalid video id", err, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func notFoundOr(err error, notFound ...error) int {
	for _, target := range notFound {
		if errors.Is(err, target) {
			return http.StatusNotFound
		}
	}
	return http.StatusInternalServerError
}

func transcriptHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseVideoID(deps, w, r)
		if !ok {
			return
		}
		text, err := deps.Store.GetTranscript(r.Context(), id)
		if err != nil {
			httputil.Fail(deps.Log.With("video_id", id), w, "transcript not ready", err, notFoundOr(err, store.ErrTranscriptNotFound))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"id":         id,
			"transcript": text,
		})
	}
}

func summaryHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseVideoID(deps, w, r)
		if !ok {
			return
		}
		video, err := deps.Store.GetVideo(r.Context(), id)
		if err != nil {
			httputil.Fail(deps.Log.With("video_id", id), w, "video not found", err, notFoundOr(err, store.ErrVideoNotFound))
			return
		}
		sum, err := deps.Store.GetSummary(r.Context(), id)
		if err != nil {
			httputil.Fail(deps.Log.With("video_id", id), w, "summary not ready", err, notFoundOr(err, store.ErrSummaryNotFound))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"id":            id,
			"video_id":      video.ExternalID,
			"status":        video.Status,
			"summary":       sum.Text,
			"degraded":      sum.Degraded,
			"chunks":        sum.Chunks,
			"failed_chunks": sum.FailedChunks,
		})
	}
}

func noteHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseVideoID(deps, w, r)
		if !ok {
			return
		}
		ctx := r.Context()
		log := deps.Log.With("video_id", id)

		video, err := deps.Store.GetVideo(ctx, id)
		if err != nil {
			httputil.Fail(log, w, "video not found", err, notFoundOr(err, store.ErrVideoNotFound))
			return
		}
		sum, err := deps.Store.GetSummary(ctx, id)
		if err != nil {
			httputil.Fail(log, w, "summary not ready", err, notFoundOr(err, store.ErrSummaryNotFound))
			return
		}
		text, err := deps.Store.GetTranscript(ctx, id)
		if err != nil && !errors.Is(err, store.ErrTranscriptNotFound) {
			httputil.Fail(log, w, "failed to load transcript", err, http.StatusInternalServerError)
			return
		}

		md := note.Markdown(note.Note{
			VideoID:    video.ExternalID,
			Title:      video.Title,
			URL:        video.URL,
			Summary:    sum.Text,
			Degraded:   sum.Degraded,
			Transcript: text,
		})
		if r.URL.Query().Get("format") != "html" {
			w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
			_, _ = w.Write([]byte(md))
			return
		}
		page, err := note.HTML(md)
		if err != nil {
			httputil.Fail(log, w, "failed to render note", err, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}
}
