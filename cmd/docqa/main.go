// Command docqa runs the document pipeline from the command line without a
// database: chunk a file, ask it a question or research a property.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"realty-assistant/internal/config"
	"realty-assistant/internal/document"
	"realty-assistant/internal/llm"
	"realty-assistant/internal/retrieval"
)

// options are the global flags shared by every subcommand.
type options struct {
	chunkSize int
	overlap   int
	topK      int
	verbose   bool
}

func (o *options) retrieval() retrieval.Options {
	return retrieval.Options{ChunkSize: o.chunkSize, Overlap: o.overlap, TopK: o.topK}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "docqa",
		Short:         "Ask questions about real-estate documents",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return opts.retrieval().Validate()
		},
	}

	defaults := retrieval.DefaultOptions()
	root.PersistentFlags().IntVar(&opts.chunkSize, "chunk-size", defaults.ChunkSize, "maximum chunk length in characters")
	root.PersistentFlags().IntVar(&opts.overlap, "overlap", defaults.Overlap, "characters shared by consecutive chunks")
	root.PersistentFlags().IntVar(&opts.topK, "top-k", defaults.TopK, "number of chunks handed to the model")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(chunksCmd(opts), askCmd(opts), researchCmd())
	return root
}

// readDocument extracts and normalizes the text of a local file.
func readDocument(ctx context.Context, path string) (*document.Extracted, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	extracted, err := document.NewRegistry(document.DefaultLimits()).Extract(ctx, path, content)
	if err != nil {
		return nil, err
	}
	extracted.Text = document.NormalizeWhitespace(extracted.Text)
	if extracted.Text == "" {
		return nil, document.ErrNoText
	}
	return extracted, nil
}

// newModel builds the chat client from the same environment as the API server.
func newModel() (*llm.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName,
		llm.WithTimeout(cfg.LLMTimeout),
		llm.WithRateLimit(cfg.LLMRequestsPerSecond),
	), nil
}

func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

func writeLine(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}
