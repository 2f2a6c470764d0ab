package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	prerrors "github.com/shikshalabs/prashna/internal/errors"
	"github.com/shikshalabs/prashna/internal/language"
	"github.com/shikshalabs/prashna/internal/store"
)

// minChunkRunes drops fragments too small to be a useful retrieval unit.
const minChunkRunes = 40

// newIngestCmd creates the ingest command.
func newIngestCmd() *cobra.Command {
	var (
		collection string
		offline    bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Add text or markdown files to a collection",
		Long: `Split the given files into paragraph chunks, embed them, and add
them to the collection so they can be retrieved by ask.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				if err := checkIngestable(path); err != nil {
					return err
				}
			}

			p, err := buildPipeline(cmd.Context(), offline)
			if err != nil {
				return err
			}
			defer p.Close()

			coll, err := p.store.InitCollection(collection)
			if err != nil {
				return err
			}

			detector := language.NewDetector(p.cfg.Language.Default)

			total := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}

				chunks := splitParagraphs(string(data))
				if len(chunks) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: nothing to ingest\n", path)
					continue
				}

				docs := make([]*store.Document, len(chunks))
				for i, chunk := range chunks {
					docs[i] = &store.Document{
						ID:        uuid.NewString(),
						Content:   chunk,
						Language:  detector.Detect(chunk).Code,
						Source:    filepath.Base(path),
						CreatedAt: time.Now().UTC(),
					}
				}

				vectors, err := p.embedder.EmbedBatch(cmd.Context(), chunks)
				if err != nil {
					return fmt.Errorf("embed %s: %w", path, err)
				}

				if err := coll.AddDocuments(cmd.Context(), docs, vectors); err != nil {
					return fmt.Errorf("index %s: %w", path, err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d chunks\n", path, len(docs))
				total += len(docs)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d chunks into %q\n", total, collection)
			return nil
		},
	}

	cmd.Flags().StringVarP(&collection, "collection", "c", "default", "Collection to add documents to")
	cmd.Flags().BoolVar(&offline, "offline", false, "Use static embeddings (no Ollama)")

	return cmd
}

// checkIngestable rejects file types the paragraph chunker cannot
// handle. Extensionless files are assumed to be plain text.
func checkIngestable(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case "", ".txt", ".md", ".markdown":
		return nil
	default:
		return prerrors.ValidationError(
			fmt.Sprintf("cannot ingest %s: only plain text and markdown files are supported", path), nil)
	}
}

// splitParagraphs chunks text on blank lines, dropping headings-only and
// tiny fragments.
func splitParagraphs(text string) []string {
	var chunks []string
	for _, block := range strings.Split(text, "\n\n") {
		chunk := strings.TrimSpace(block)
		if len([]rune(chunk)) < minChunkRunes {
			continue
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}
