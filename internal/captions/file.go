package captions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSource reads caption items from <Dir>/<videoID>.json files holding a
// JSON array of items.
type FileSource struct {
	Dir string
}

// NewFileSource returns a Source rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

func (s *FileSource) Captions(_ context.Context, videoID string) ([]Item, error) {
	if videoID == "" || strings.ContainsAny(videoID, `/\`) {
		return nil, fmt.Errorf("invalid video id %q", videoID)
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, videoID+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoCaptions
	}
	if err != nil {
		return nil, fmt.Errorf("read captions for %s: %w", videoID, err)
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode captions for %s: %w", videoID, err)
	}
	if JoinText(items) == "" {
		return nil, ErrNoCaptions
	}
	return items, nil
}
