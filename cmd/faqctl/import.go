package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yanqian/faqbot/internal/infra/faqrepo"
)

func newImportCmd(root *rootOptions) *cobra.Command {
	var (
		replace bool
		dsn     string
	)
	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Copy a YAML catalog into the configured database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if dsn == "" {
				dsn = cfg.Catalog.DSN
			}
			if dsn == "" {
				return errors.New("catalog.dsn is not set; pass --dsn or configure CATALOG_DSN")
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read seed: %w", err)
			}
			records, err := faqrepo.ParseSeed(data)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Catalog.LoadTimeout)
			defer cancel()
			store, err := faqrepo.Open(ctx, dsn, faqrepo.Options{MaxConns: 2})
			if err != nil {
				return fmt.Errorf("open catalog store: %w", err)
			}
			defer store.Close()

			n, err := store.ImportRecords(ctx, records, replace)
			if err != nil {
				return fmt.Errorf("import records: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "delete existing entries first")
	cmd.Flags().StringVar(&dsn, "dsn", "", "override catalog.dsn")
	return cmd
}
