package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakridge-labs/swagconfd/internal/core"
	"github.com/oakridge-labs/swagconfd/internal/orchestrator"
)

func newHealthCmd() *cobra.Command {
	var timeoutSeconds int
	var followRedirects bool

	cmd := &cobra.Command{
		Use:   "health [domain]",
		Short: "Probe a managed domain's health endpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, _, err := bootstrap()
			if err != nil {
				return err
			}
			defer orch.Close()

			ctx := orchestrator.NewOperationContext(context.Background())
			result, err := orch.Health(ctx, core.HealthRequest{
				Domain:          args[0],
				TimeoutSeconds:  timeoutSeconds,
				FollowRedirects: followRedirects,
			})
			if err != nil {
				return err
			}

			if result.Success {
				fmt.Printf("ok: %s -> %d (%dms)\n", result.URL, result.StatusCode, result.ResponseTimeMS)
			} else {
				fmt.Printf("unhealthy: %s (%dms)\n", result.Error, result.ResponseTimeMS)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 30, "total probe budget in seconds")
	cmd.Flags().BoolVar(&followRedirects, "follow-redirects", true, "follow up to 5 redirect hops")
	return cmd
}
