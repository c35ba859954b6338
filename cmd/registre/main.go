// Command registre reconciles the Val-d'Or municipal contaminated-lands
// register against the provincial registry, serves the dashboard API and
// manages dataset imports.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/valdor-terrains/internal/config"
	"github.com/valdor-terrains/internal/ledger"
	"github.com/valdor-terrains/internal/load"
	"github.com/valdor-terrains/internal/pipeline"
	"github.com/valdor-terrains/internal/store"
	"github.com/valdor-terrains/internal/web"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "loading .env: %v\n", err)
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()
	if config.GetEnvBool("DEBUG", false) {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	rootCmd := &cobra.Command{
		Use:   "registre",
		Short: "Val-d'Or contaminated-lands registry reconciliation",
		Long:  "Cross-references the municipal contaminated-lands register against the provincial registry and tracks remediation validation decisions.",
	}

	rootCmd.AddCommand(newRunCmd(log))
	rootCmd.AddCommand(newServeCmd(log))
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newPingCmd(log))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runReport is the JSON document emitted by the run command.
type runReport struct {
	RunID      string            `json:"run_id"`
	StartedAt  string            `json:"started_at"`
	DurationMS int64             `json:"duration_ms"`
	Outcome    *pipeline.Outcome `json:"outcome"`
}

// newRunCmd creates the one-shot reconciliation command.
func newRunCmd(log zerolog.Logger) *cobra.Command {
	var (
		municipalPath  string
		governmentPath string
		cachePath      string
		outPath        string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one reconciliation pass and emit a JSON report",
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()

			municipal, _, err := load.ReadJSONFile(municipalPath)
			if err != nil {
				return err
			}
			government, _, err := load.ReadJSONFile(governmentPath)
			if err != nil {
				return err
			}

			led := ledger.New()
			if cachePath != "" {
				snap, err := store.NewCache(cachePath).Load()
				if err != nil {
					return err
				}
				led.Merge(snap)
			}

			outcome := pipeline.New(log).Run(municipal, government, led)

			report := runReport{
				RunID:      uuid.NewString(),
				StartedAt:  started.UTC().Format(time.RFC3339),
				DurationMS: time.Since(started).Milliseconds(),
				Outcome:    outcome,
			}

			out := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("creating report %s: %w", outPath, err)
				}
				defer f.Close()
				out = f
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}

			log.Info().
				Str("run_id", report.RunID).
				Int("confirmed", outcome.Counts.Confirmed).
				Int("pending", outcome.Counts.Pending).
				Int("not_in_registry", outcome.Counts.NotInRegistry).
				Msg("reconciliation complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&municipalPath, "municipal", "data/municipal-data.json", "municipal dataset file")
	cmd.Flags().StringVar(&governmentPath, "government", "data/government-data.json", "government dataset file")
	cmd.Flags().StringVar(&cachePath, "validations", "", "validation snapshot file to overlay")
	cmd.Flags().StringVar(&outPath, "out", "", "write the report to a file instead of stdout")
	return cmd
}

// newServeCmd creates the HTTP server command.
func newServeCmd(log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := web.ConfigFromEnv()

			var persister web.Persister
			if cfg.DatabaseEnabled {
				st, err := store.Open(cmd.Context(), store.DSNFromEnv(),
					log.With().Str("component", "store").Logger())
				if err != nil {
					return err
				}
				defer st.Close()
				persister = st
			}

			svc := web.NewService(cfg, persister, store.NewCache(cfg.ValidationCache), log)
			if err := svc.Bootstrap(cmd.Context()); err != nil {
				return err
			}
			return web.NewServer(cfg, svc, log).Start()
		},
	}
}

// newImportCmd converts a municipal CSV export to the JSON dataset format.
func newImportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "import <register.csv>",
		Short: "Convert a municipal register CSV export to the JSON dataset format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := load.ReadMunicipalCSVFile(args[0])
			if err != nil {
				return err
			}

			doc := map[string]any{
				"data": records,
				"metadata": map[string]any{
					"source":      args[0],
					"last_update": time.Now().UTC().Format(time.RFC3339),
				},
			}
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}

			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d records written to %s\n", len(records), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	return cmd
}

// newPingCmd tests validation store connectivity.
func newPingCmd(log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test validation store connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			st, err := store.Open(ctx, store.DSNFromEnv(),
				log.With().Str("component", "store").Logger())
			if err != nil {
				return err
			}
			defer st.Close()

			snap, err := st.Load(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "validation store reachable: %d validated, %d rejected\n",
				len(snap.Validated), len(snap.Rejected))
			return nil
		},
	}
}
