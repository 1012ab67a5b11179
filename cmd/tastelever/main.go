// Command tastelever compiles a classification prompt for the earnings call
// takeaways materiality dataset.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/teilomillet/tastelever/config"
	"github.com/teilomillet/tastelever/utils"
)

type globalFlags struct {
	envFile  string
	provider string
	model    string
	endpoint string
	logLevel string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "tastelever",
		Short: "Compile few-shot classification prompts",
		Long: `tastelever drafts a prompt for a classification task, finds the training
examples it gets most confidently wrong, and turns them into annotated
few-shot examples as long as that lowers the loss on the test set.

Provider settings come from the environment (LLM_PROVIDER, LLM_MODEL,
LLM_ENDPOINT, OPENAI_API_KEY, ...). A .env file is loaded when present.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Environment file to load before reading the configuration")
	rootCmd.PersistentFlags().StringVar(&flags.provider, "provider", "", "Override LLM_PROVIDER")
	rootCmd.PersistentFlags().StringVar(&flags.model, "model", "", "Override LLM_MODEL")
	rootCmd.PersistentFlags().StringVar(&flags.endpoint, "endpoint", "", "Override LLM_ENDPOINT")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override LLM_LOG_LEVEL (off, error, warn, info, debug)")

	rootCmd.AddCommand(
		compileCmd(flags),
		schemaCmd(),
	)
	return rootCmd
}

// loadConfig reads the env file, then the environment, then the flag overrides.
func (f *globalFlags) loadConfig() (*config.Config, error) {
	if f.envFile != "" {
		if err := godotenv.Load(f.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f.envFile, err)
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var opts []config.ConfigOption
	if f.provider != "" {
		opts = append(opts, config.SetProvider(f.provider))
	}
	if f.model != "" {
		opts = append(opts, config.SetModel(f.model))
	}
	if f.endpoint != "" {
		opts = append(opts, config.SetEndpoint(f.endpoint))
	}
	if f.logLevel != "" {
		var level utils.LogLevel
		if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
			return nil, err
		}
		opts = append(opts, config.SetLogLevel(level))
	}
	config.ApplyOptions(cfg, opts...)
	return cfg, nil
}
