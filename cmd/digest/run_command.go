package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"caption-digest/internal/app"
	"caption-digest/internal/captions"
	"caption-digest/internal/note"
	"caption-digest/internal/pipeline"
)

type runOptions struct {
	captionsDir string
	outDir      string
	html        bool
	provider    string
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run VIDEO_ID...",
		Short: "Clean and summarize videos one after another",
		Long: "Reads <captions>/<VIDEO_ID>.json for each id, cleans the transcript, summarizes it\n" +
			"and writes <out>/<VIDEO_ID>.md. Failed videos get a placeholder note and the run\n" +
			"continues; the command exits non-zero when any video failed.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := ctx.load(cmd)
			if err != nil {
				return err
			}
			if opts.provider != "" {
				cfg.LLMProvider = opts.provider
			}
			client, err := ctx.newClient(cfg, log)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			runner := pipeline.NewRunner(
				captions.NewFileSource(opts.captionsDir),
				app.NewOrchestrator(cfg, log, client),
				app.SummarySettings(cfg),
				log,
			)

			var writeErr error
			outcomes := runner.ProcessBatch(cmd.Context(), args, func(o pipeline.Outcome) {
				path, err := writeNote(opts, o)
				if err != nil && writeErr == nil {
					writeErr = err
				}
				reportOutcome(cmd.OutOrStdout(), o, path)
			})
			if writeErr != nil {
				return writeErr
			}
			if failed := pipeline.Failures(outcomes); failed > 0 {
				return fmt.Errorf("%d of %d videos failed", failed, len(outcomes))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.captionsDir, "captions", "", "Directory holding <VIDEO_ID>.json caption files")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "Directory to write notes into")
	cmd.Flags().BoolVar(&opts.html, "html", false, "Also write an HTML rendering of each note")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "Override LLM_PROVIDER (openai, stub)")
	_ = cmd.MarkFlagRequired("captions")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func writeNote(opts runOptions, o pipeline.Outcome) (string, error) {
	md := note.Markdown(note.Note{
		VideoID:    o.VideoID,
		Summary:    o.Summary,
		Degraded:   o.Degraded,
		Transcript: o.Transcript,
	})
	path := filepath.Join(opts.outDir, note.Filename(o.VideoID))
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return "", fmt.Errorf("write note for %s: %w", o.VideoID, err)
	}
	if opts.html {
		page, err := note.HTML(md)
		if err != nil {
			return "", err
		}
		htmlPath := strings.TrimSuffix(path, ".md") + ".html"
		if err := os.WriteFile(htmlPath, []byte(page), 0o644); err != nil {
			return "", fmt.Errorf("write html note for %s: %w", o.VideoID, err)
		}
	}
	return path, nil
}

func reportOutcome(w io.Writer, o pipeline.Outcome, path string) {
	switch {
	case o.Failed:
		fmt.Fprintf(w, "FAIL %s: %v\n", o.VideoID, o.Err)
	case o.Degraded:
		fmt.Fprintf(w, "OK   %s -> %s (chunked, %d parts)\n", o.VideoID, path, o.Chunks)
	default:
		fmt.Fprintf(w, "OK   %s -> %s\n", o.VideoID, path)
	}
}
