package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanqian/faqbot/internal/domain/faq"
)

func newAskCmd(root *rootOptions) *cobra.Command {
	var explain bool
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Answer one message with the local catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Catalog.LoadTimeout)
			defer cancel()

			svc, release, err := localService(ctx, cfg, root.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer release()

			reply := svc.Respond(context.Background(), faq.Request{Message: strings.Join(args, " ")})
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, reply.Answer)
			if explain {
				fmt.Fprintf(out, "source=%s score=%.4f cached=%t\n", reply.Source, reply.Score, reply.Cached)
				if reply.Err != nil {
					fmt.Fprintf(out, "error=%v\n", reply.Err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&explain, "explain", false, "print the reply source and similarity score")
	return cmd
}
