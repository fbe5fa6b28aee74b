package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kirillkom/cto-coach/internal/core/domain"
	"github.com/kirillkom/cto-coach/internal/infrastructure/events/nats"
)

func newWatchCmd() *cobra.Command {
	var natsURL, prefix string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream document lifecycle events from NATS",
		Long: `Print document created, reclassified and deleted events as JSON lines
until interrupted. The API must run with NATS_URL set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			enc := json.NewEncoder(cmd.OutOrStdout())
			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s.> on %s\n", prefix, natsURL)
			return nats.Watch(ctx, natsURL, prefix, func(event domain.DocumentEvent) {
				_ = enc.Encode(event)
			})
		},
	}
	cmd.Flags().StringVar(&natsURL, "nats-url", "nats://localhost:4222", "NATS server URL")
	cmd.Flags().StringVar(&prefix, "prefix", nats.DefaultSubjectPrefix, "subject prefix")
	return cmd
}
