package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/teilomillet/tastelever"
	"github.com/teilomillet/tastelever/compiler"
	"github.com/teilomillet/tastelever/dataset"
	"github.com/teilomillet/tastelever/llm"
)

type compileFlags struct {
	train       string
	test        string
	outDir      string
	initial     string
	rounds      int
	metricsAddr string
}

func compileCmd(global *globalFlags) *cobra.Command {
	flags := &compileFlags{}

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a prompt for the takeaways dataset",
		Long: `Compile runs one improvement iteration per round. Each round is seeded with
the previous round's bundle and written to its own file in the output
directory (compiled-prompt.json, compiled-prompt-2.json, ...), next to the
bundle JSON schema they reference.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			client, err := tastelever.NewClientFromConfig(cfg, nil)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if flags.metricsAddr != "" {
				shutdown := serveMetrics(flags.metricsAddr, client)
				defer shutdown()
			}
			return runCompile(ctx, cmd, client, flags)
		},
	}

	cmd.Flags().StringVar(&flags.train, "train", "datasets/takeaways-train.json", "Training dataset")
	cmd.Flags().StringVar(&flags.test, "test", "datasets/takeaways-test.json", "Test dataset")
	cmd.Flags().StringVarP(&flags.outDir, "out-dir", "o", "test-results", "Output directory")
	cmd.Flags().StringVar(&flags.initial, "initial", "", "Bundle to start from instead of drafting a new prompt")
	cmd.Flags().IntVarP(&flags.rounds, "rounds", "n", 2, "Number of improvement rounds")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while compiling")
	return cmd
}

func runCompile(ctx context.Context, cmd *cobra.Command, client *tastelever.Client, flags *compileFlags) error {
	if flags.rounds < 1 {
		return fmt.Errorf("--rounds must be at least 1")
	}
	out := cmd.OutOrStdout()

	train, err := dataset.Load[Takeaway, Materiality](flags.train)
	if err != nil {
		return err
	}
	test, err := dataset.Load[Takeaway, Materiality](flags.test)
	if err != nil {
		return err
	}

	var bundle *compiler.Bundle[Takeaway, Materiality]
	if flags.initial != "" {
		if bundle, err = dataset.ReadBundle[Takeaway, Materiality](flags.initial); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(flags.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := dataset.WriteBundleSchema[Takeaway, Materiality](filepath.Join(flags.outDir, schemaFileName)); err != nil {
		return err
	}

	comp, err := tastelever.NewCompiler[Takeaway, Materiality](client, materialityScore)
	if err != nil {
		return err
	}

	for round := 1; round <= flags.rounds; round++ {
		bundle, err = comp.Compile(ctx, train, test, bundle)
		if err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}

		path := filepath.Join(flags.outDir, bundleFileName(round))
		if err := dataset.WriteBundle(path, bundle, "./"+schemaFileName); err != nil {
			return err
		}
		fmt.Fprintf(out, "compiled prompt written to %s (%d examples)\n", path, len(bundle.Examples))
	}

	if len(test) > 0 {
		reportPromptSize(cmd, client, bundle, test[0].Data)
	}
	return nil
}

// bundleFileName names the output of a round: compiled-prompt.json for the
// first, compiled-prompt-N.json after that.
func bundleFileName(round int) string {
	if round <= 1 {
		return "compiled-prompt.json"
	}
	return fmt.Sprintf("compiled-prompt-%d.json", round)
}

func reportPromptSize(cmd *cobra.Command, client *tastelever.Client, bundle *compiler.Bundle[Takeaway, Materiality], sample Takeaway) {
	rendered, err := compiler.Render(bundle.Prompt, bundle.Examples, sample)
	if err != nil {
		client.Logger().Warn("Failed to render prompt", "error", err)
		return
	}
	counter, err := llm.NewTokenCounter(client.Config().Model, client.Logger())
	if err != nil {
		client.Logger().Warn("Failed to load tokenizer", "error", err)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "rendered prompt size: %d tokens\n", counter.Count(rendered.System)+counter.Count(rendered.User))
}

func serveMetrics(addr string, client *tastelever.Client) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			client.Logger().Error("Metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
