package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"realty-assistant/internal/answer"
	"realty-assistant/internal/retrieval"
)

func askCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ask FILE QUESTION",
		Short: "Answer a question from one document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			question := strings.TrimSpace(args[1])

			doc, err := readDocument(ctx, args[0])
			if err != nil {
				return err
			}
			chunks, err := retrieval.ChunkText(doc.Text, opts.chunkSize, opts.overlap)
			if err != nil {
				return err
			}
			scored, err := retrieval.Retrieve(chunks, question, opts.topK)
			if err != nil {
				return err
			}

			model, err := newModel()
			if err != nil {
				return err
			}
			ans, err := answer.NewGenerator(model).Generate(ctx, question, scored, answer.ConversationContext{})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					answer.Answer
					Retrieved []retrieval.ScoredChunk `json:"retrieved"`
				}{ans, scored})
			}

			writeLine(out, "%s", ans.Text)
			writeLine(out, "")
			writeLine(out, "Confidence: %.2f", ans.Confidence)
			if ans.Reasoning != "" {
				writeLine(out, "Reasoning: %s", ans.Reasoning)
			}
			for _, c := range scored {
				writeLine(out, "  [chunk %d] score %.1f %q", c.Index, c.Score, preview(c.Text, chunkPreviewRunes))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the answer and retrieved chunks as JSON")
	return cmd
}
