package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// newAskCmd creates the ask command.
func newAskCmd() *cobra.Command {
	var (
		collection string
		jsonOutput bool
		offline    bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question against a document collection",
		Long: `Ask a question in English or Hindi. The answer is grounded in the
collection's documents when they are relevant, with source citations.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")

			p, err := buildPipeline(cmd.Context(), offline)
			if err != nil {
				return err
			}
			defer p.Close()

			resp := p.orch.ProcessQuery(cmd.Context(), question, nil, collection)

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, resp.Answer)
			if len(resp.Sources) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Sources:")
				for i, src := range resp.Sources {
					fmt.Fprintf(out, "  %d. %s\n", i+1, src.Snippet)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&collection, "collection", "c", "default", "Collection to query")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the full response as JSON")
	cmd.Flags().BoolVar(&offline, "offline", false, "Use static embeddings and pattern classification (no Ollama)")

	return cmd
}
