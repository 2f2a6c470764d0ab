package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/shikshalabs/prashna/internal/preflight"
	"github.com/shikshalabs/prashna/internal/rag"
)

// healthReport is the health command's output: the pipeline health
// record plus environment check results.
type healthReport struct {
	rag.HealthStatus
	Environment string                  `json:"environment"`
	Checks      []preflight.CheckResult `json:"checks"`
}

// newHealthCmd creates the health command.
func newHealthCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Print operational health, cache hit rates, and environment checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := buildPipeline(cmd.Context(), offline)
			if err != nil {
				return err
			}
			defer p.Close()

			var opts []preflight.Option
			if !offline {
				opts = append(opts, preflight.WithOllama(p.cfg.Classifier.OllamaHost,
					p.cfg.Classifier.Model, p.cfg.Engine.GeneratorModel, p.cfg.Embeddings.Model))
			}
			checker := preflight.New(opts...)
			checks := checker.RunAll(cmd.Context(), p.cfg.Store.DataDir)

			report := healthReport{
				HealthStatus: p.orch.GetHealthStatus(),
				Environment:  checker.SummaryStatus(checks),
				Checks:       checks,
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Use static embeddings and skip Ollama checks")

	return cmd
}
