package main

import (
	"context"
	"os"

	"domainwatch/internal/config"
	"domainwatch/internal/subscription"

	"github.com/go-faster/jx"
	"github.com/spf13/cobra"
)

type operation func(svc subscription.Service, ctx context.Context, id, visitorIP string) subscription.Result

// subscriptionCommand runs op once against the stores and prints the result
// as JSON. The command fails when the result carries errors.
func subscriptionCommand(cfg *config.Config, use, short string, op operation) *cobra.Command {
	var id, visitorIP string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			res := op(getSubscriptions(ctx, cfg, nil), ctx, id, visitorIP)

			var e jx.Encoder
			e.SetIdent(2)
			res.Encode(&e)
			_, _ = os.Stdout.Write(append(e.Bytes(), '\n'))

			return res.Err()
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Subscription id")
	cmd.Flags().StringVar(&visitorIP, "ip", "127.0.0.1", "Visitor IP recorded with the subscription")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func confirmCommand(cfg *config.Config) *cobra.Command {
	return subscriptionCommand(cfg, "confirm", "Confirms a pending subscription",
		subscription.Service.Confirm)
}

func unsubscribeCommand(cfg *config.Config) *cobra.Command {
	return subscriptionCommand(cfg, "unsubscribe", "Removes a confirmed subscription",
		subscription.Service.Unsubscribe)
}
