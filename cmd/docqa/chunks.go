package main

import (
	"github.com/spf13/cobra"

	"realty-assistant/internal/retrieval"
)

const chunkPreviewRunes = 60

func chunksCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "chunks FILE",
		Short: "Print the chunks a document is split into",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			chunks, err := retrieval.ChunkText(doc.Text, opts.chunkSize, opts.overlap)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			writeLine(out, "%s: %d characters, %d chunks", doc.Title, len([]rune(doc.Text)), len(chunks))
			for _, c := range chunks {
				writeLine(out, "[%d] %d-%d %q", c.Index, c.StartOffset, c.EndOffset, preview(c.Text, chunkPreviewRunes))
			}
			return nil
		},
	}
}
