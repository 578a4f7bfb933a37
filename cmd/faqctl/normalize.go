package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanqian/faqbot/internal/domain/faq"
)

func newNormalizeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <text>",
		Short: "Print the normalized form used for matching and caching",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			normalizer := faq.NewNormalizer(faqConfig(cfg).NormalizerOptions())
			fmt.Fprintln(cmd.OutOrStdout(), normalizer.Normalize(strings.Join(args, " ")))
			return nil
		},
	}
}
