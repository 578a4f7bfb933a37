package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/yanqian/faqbot/internal/infra/config"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "faqctl",
		Short:         "Operate the FAQ chatbot catalog",
		Long:          "faqctl queries the chatbot pipeline locally, imports YAML catalogs into the configured store and prepares admin credentials.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file path (defaults to CONFIG_PATH or configs/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline activity to stderr")

	cmd.AddCommand(
		newAskCmd(opts),
		newImportCmd(opts),
		newNormalizeCmd(opts),
		newHashPasswordCmd(),
	)
	return cmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configPath != "" {
		if err := os.Setenv("CONFIG_PATH", o.configPath); err != nil {
			return nil, err
		}
	}
	return config.Load()
}

func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	if !o.verbose {
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
