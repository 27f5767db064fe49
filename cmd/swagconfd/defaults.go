package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakridge-labs/swagconfd/internal/orchestrator"
)

func newDefaultsCmd() *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Print the effective environment defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, _, err := bootstrap()
			if err != nil {
				return err
			}
			defer orch.Close()

			d := orch.Defaults(orchestrator.NewOperationContext(context.Background()))

			if asYAML {
				out, err := yaml.Marshal(d)
				if err != nil {
					return fmt.Errorf("marshal defaults: %w", err)
				}
				fmt.Print(string(out))
				return nil
			}

			fmt.Printf("auth_method:      %s\n", d.AuthMethod)
			fmt.Printf("config_base:      %s\n", d.ConfigBase)
			fmt.Printf("quic_enabled:     %t\n", d.QUICEnabled)
			fmt.Printf("backup_retention: %d days\n", d.BackupRetention)
			fmt.Printf("health_timeout:   %ds\n", d.HealthTimeoutS)
			fmt.Printf("max_file_bytes:   %d\n", d.MaxFileBytes)
			fmt.Printf("templates:        %s\n", strings.Join(d.TemplateNames, ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print defaults as YAML")
	return cmd
}
