package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"caption-digest/internal/captions"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Several services start together; only one runs the DDL.
	const lockID = 731447021

	var acquired bool
	if err := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, lockID).Scan(&acquired); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	if !acquired {
		time.Sleep(2 * time.Second)
		return nil
	}
	defer func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS videos (
			id UUID PRIMARY KEY,
			external_id TEXT NOT NULL,
			title TEXT,
			url TEXT,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS captions (
			video_id UUID REFERENCES videos(id) ON DELETE CASCADE,
			ord INT,
			text TEXT,
			offset_ms BIGINT,
			duration_ms BIGINT,
			PRIMARY KEY (video_id, ord)
		);`,
		`CREATE TABLE IF NOT EXISTS transcripts (
			video_id UUID PRIMARY KEY REFERENCES videos(id) ON DELETE CASCADE,
			text TEXT,
			updated_at TIMESTAMPTZ DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS summaries (
			video_id UUID PRIMARY KEY REFERENCES videos(id) ON DELETE CASCADE,
			summary TEXT,
			degraded BOOLEAN NOT NULL DEFAULT false,
			chunks INT NOT NULL DEFAULT 1,
			failed_chunks INT[] NOT NULL DEFAULT '{}'
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) CreateVideo(ctx context.Context, v NewVideo) (Video, error) {
	id := uuid.New()
	var createdAt time.Time
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO videos(id, external_id, title, url, status) VALUES($1,$2,$3,$4,$5) RETURNING created_at`,
		id, v.ExternalID, v.Title, v.URL, StatusProcessing).Scan(&createdAt)
	if err != nil {
		return Video{}, err
	}
	return Video{
		ID:         id,
		ExternalID: v.ExternalID,
		Title:      v.Title,
		URL:        v.URL,
		Status:     StatusProcessing,
		CreatedAt:  createdAt,
	}, nil
}

func (s *PostgresStore) GetVideo(ctx context.Context, id uuid.UUID) (Video, error) {
	v := Video{ID: id}
	row := s.db.QueryRowContext(ctx,
		`SELECT external_id, COALESCE(title, ''), COALESCE(url, ''), status, created_at FROM videos WHERE id=$1`, id)
	if err := row.Scan(&v.ExternalID, &v.Title, &v.URL, &v.Status, &v.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Video{}, ErrVideoNotFound
		}
		return Video{}, fmt.Errorf("failed to get video %s: %w", id, err)
	}
	return v, nil
}

func (s *PostgresStore) UpdateVideoStatus(ctx context.Context, id uuid.UUID, status VideoStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE videos SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVideoNotFound
	}
	return nil
}

// SaveCaptions replaces the caption items of a video.
func (s *PostgresStore) SaveCaptions(ctx context.Context, videoID uuid.UUID, items []captions.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM captions WHERE video_id=$1`, videoID); err != nil {
		return err
	}
	for i, item := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO captions(video_id, ord, text, offset_ms, duration_ms) VALUES($1,$2,$3,$4,$5)`,
			videoID, i, item.Text, item.OffsetMs, item.DurationMs)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) ListCaptions(ctx context.Context, videoID uuid.UUID) ([]captions.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT text, offset_ms, duration_ms FROM captions WHERE video_id=$1 ORDER BY ord`, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []captions.Item
	for rows.Next() {
		var item captions.Item
		if err := rows.Scan(&item.Text, &item.OffsetMs, &item.DurationMs); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SaveTranscript(ctx context.Context, videoID uuid.UUID, text string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transcripts(video_id, text)
		VALUES($1,$2)
		ON CONFLICT (video_id) DO UPDATE SET text=excluded.text, updated_at=now()`,
		videoID, text)
	return err
}

func (s *PostgresStore) GetTranscript(ctx context.Context, videoID uuid.UUID) (string, error) {
	var text string
	err := s.db.QueryRowContext(ctx, `SELECT text FROM transcripts WHERE video_id=$1`, videoID).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrTranscriptNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get transcript for video %s: %w", videoID, err)
	}
	return text, nil
}

func (s *PostgresStore) SaveSummary(ctx context.Context, summary Summary) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO summaries(video_id, summary, degraded, chunks, failed_chunks)
		VALUES($1,$2,$3,$4,$5)
		ON CONFLICT (video_id) DO UPDATE SET
			summary=excluded.summary,
			degraded=excluded.degraded,
			chunks=excluded.chunks,
			failed_chunks=excluded.failed_chunks`,
		summary.VideoID, summary.Text, summary.Degraded, summary.Chunks, pq.Array(toInt64s(summary.FailedChunks)))
	return err
}

func (s *PostgresStore) GetSummary(ctx context.Context, videoID uuid.UUID) (Summary, error) {
	sum := Summary{VideoID: videoID}
	var failed []int64
	row := s.db.QueryRowContext(ctx,
		`SELECT summary, degraded, chunks, failed_chunks FROM summaries WHERE video_id=$1`, videoID)
	if err := row.Scan(&sum.Text, &sum.Degraded, &sum.Chunks, pq.Array(&failed)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Summary{}, ErrSummaryNotFound
		}
		return Summary{}, fmt.Errorf("failed to get summary for video %s: %w", videoID, err)
	}
	sum.FailedChunks = fromInt64s(failed)
	return sum, nil
}

func toInt64s(items []int) []int64 {
	out := make([]int64, len(items))
	for i, v := range items {
		out[i] = int64(v)
	}
	return out
}

func fromInt64s(items []int64) []int {
	if len(items) == 0 {
		return nil
	}
	out := make([]int, len(items))
	for i, v := range items {
		out[i] = int(v)
	}
	return out
}
