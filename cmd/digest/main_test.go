package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"caption-digest/internal/captions"
	"caption-digest/internal/config"
	"caption-digest/internal/llm"
	"caption-digest/internal/summarize"
)

func writeCaptions(t *testing.T, dir, id string, items []captions.Item) {
	t.Helper()
	data, err := json.Marshal(items)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".json"), data, 0o644))
}

func stubContext(maxInputTokens int) *commandContext {
	return &commandContext{newClient: func(config.Config, *slog.Logger) (llm.Client, error) {
		return llm.NewStubClient(maxInputTokens), nil
	}}
}

func execute(t *testing.T, ctx *commandContext, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PACING_DELAY", "1ms")
	cmd := newRootCommand(ctx)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunWritesNotes(t *testing.T) {
	capDir, outDir := t.TempDir(), t.TempDir()
	writeCaptions(t, capDir, "cats", []captions.Item{
		{Text: "um so the the cat"},
		{Text: "[0:01] sat on the mat you know"},
	})

	out, err := execute(t, stubContext(0), "run", "--captions", capDir, "--out", outDir, "--html", "cats")
	require.NoError(t, err)

	if !strings.Contains(out, "OK   cats") {
		t.Errorf("unexpected report %q", out)
	}
	md, err := os.ReadFile(filepath.Join(outDir, "cats.md"))
	require.NoError(t, err)
	if !strings.Contains(string(md), "## Transcript\n\nThe cat sat on the mat\n") {
		t.Errorf("note missing cleaned transcript:\n%s", md)
	}
	if _, err := os.Stat(filepath.Join(outDir, "cats.html")); err != nil {
		t.Errorf("html note not written: %v", err)
	}
}

func TestRunContinuesPastFailures(t *testing.T) {
	capDir, outDir := t.TempDir(), t.TempDir()
	writeCaptions(t, capDir, "first", []captions.Item{{Text: "the first video is short"}})
	writeCaptions(t, capDir, "third", []captions.Item{{Text: "the third video is short too"}})

	out, err := execute(t, stubContext(0), "run", "--captions", capDir, "--out", outDir, "first", "second", "third")
	if err == nil || !strings.Contains(err.Error(), "1 of 3 videos failed") {
		t.Fatalf("expected a failure summary, got %v", err)
	}
	if !strings.Contains(out, "FAIL second") || !strings.Contains(out, "OK   third") {
		t.Errorf("batch should report the failure and continue: %q", out)
	}

	md, err := os.ReadFile(filepath.Join(outDir, "second.md"))
	require.NoError(t, err)
	if !strings.Contains(string(md), summarize.Placeholder) {
		t.Errorf("failed video should get a placeholder note:\n%s", md)
	}
}

func TestRunFallsBackToChunks(t *testing.T) {
	capDir, outDir := t.TempDir(), t.TempDir()
	items := make([]captions.Item, 0, 200)
	for range 200 {
		items = append(items, captions.Item{Text: "the speaker explains one more detail about caching."})
	}
	writeCaptions(t, capDir, "long", items)

	// the transcript alone is far above 1000 estimated tokens; chunks and the
	// combined chunk summaries fit
	t.Setenv("CHUNK_TOKEN_BUDGET", "500")
	t.Setenv("MAX_OUTPUT_TOKENS", "100")
	out, err := execute(t, stubContext(1000), "run", "--captions", capDir, "--out", outDir, "long")
	require.NoError(t, err)
	if !strings.Contains(out, "chunked") {
		t.Errorf("expected a chunked summary, got %q", out)
	}
	md, err := os.ReadFile(filepath.Join(outDir, "long.md"))
	require.NoError(t, err)
	if !strings.Contains(string(md), "> This summary was assembled") {
		t.Errorf("degraded note should carry the notice:\n%s", md)
	}
}

func TestRunRequiresFlags(t *testing.T) {
	if _, err := execute(t, stubContext(0), "run", "cats"); err == nil {
		t.Error("expected missing flag error")
	}
}

func TestCleanCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captions.json")
	data, err := json.Marshal([]captions.Item{{Text: "uh i think it&#39;s fine"}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	out, err := execute(t, stubContext(0), "clean", path)
	require.NoError(t, err)
	if strings.TrimSpace(out) != "I think it's fine" {
		t.Errorf("unexpected cleaned output %q", out)
	}
}
