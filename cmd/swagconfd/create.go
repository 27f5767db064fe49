package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakridge-labs/swagconfd/internal/core"
	"github.com/oakridge-labs/swagconfd/internal/orchestrator"
)

func newCreateCmd() *cobra.Command {
	var req core.ConfigRequest
	var proto, auth string

	cmd := &cobra.Command{
		Use:   "create [config_name]",
		Short: "Render and write a new managed configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.ConfigName = args[0]
			req.UpstreamProto = core.UpstreamProto(proto)
			req.AuthMethod = core.AuthMethod(auth)

			orch, _, err := bootstrap()
			if err != nil {
				return err
			}
			defer orch.Close()

			ctx := orchestrator.NewOperationContext(context.Background())
			name, backupName, err := orch.Create(ctx, req)
			if err != nil {
				return err
			}

			fmt.Println("created:", name)
			if backupName != "" {
				fmt.Println("backup:", backupName)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.ServerName, "server-name", "", "public DNS name (required)")
	cmd.Flags().StringVar(&req.UpstreamApp, "upstream-app", "", "upstream host/container/IP (required)")
	cmd.Flags().IntVar(&req.UpstreamPort, "upstream-port", 0, "upstream port (required)")
	cmd.Flags().StringVar(&proto, "upstream-proto", "http", "http|https")
	cmd.Flags().BoolVar(&req.MCPEnabled, "mcp", false, "render the MCP-enabled template variant")
	cmd.Flags().StringVar(&auth, "auth-method", "authelia", "none|basic|ldap|authelia|authentik|tinyauth")
	cmd.Flags().BoolVar(&req.EnableQUIC, "quic", false, "enable HTTP/3 QUIC listener and Alt-Svc header")

	_ = cmd.MarkFlagRequired("server-name")
	_ = cmd.MarkFlagRequired("upstream-app")
	_ = cmd.MarkFlagRequired("upstream-port")

	return cmd
}
