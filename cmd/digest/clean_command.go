package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"caption-digest/internal/captions"
	"caption-digest/internal/transcript"
)

func newCleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean <captions.json|->",
		Short: "Print the cleaned transcript of a caption file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open captions: %w", err)
				}
				defer f.Close()
				r = f
			}
			var items []captions.Item
			if err := json.NewDecoder(r).Decode(&items); err != nil {
				return fmt.Errorf("decode captions: %w", err)
			}
			text := transcript.Prepare(items)
			if text == "" {
				return captions.ErrNoCaptions
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
