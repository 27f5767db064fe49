package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakridge-labs/swagconfd/internal/core"
	"github.com/oakridge-labs/swagconfd/internal/orchestrator"
)

func newListCmd() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List managed configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, _, err := bootstrap()
			if err != nil {
				return err
			}
			defer orch.Close()

			ctx := orchestrator.NewOperationContext(context.Background())
			files, count, err := orch.List(ctx, core.ListFilter(filter))
			if err != nil {
				return err
			}

			fmt.Printf("%d file(s)\n", count)
			for _, f := range files {
				fmt.Printf("%-8s %10d  %s\n", f.Class, f.Size, f.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "all", "all|active|samples")
	return cmd
}

func newReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read [name]",
		Short: "Print a managed configuration file's content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, _, err := bootstrap()
			if err != nil {
				return err
			}
			defer orch.Close()

			ctx := orchestrator.NewOperationContext(context.Background())
			content, err := orch.Read(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Print(content)
			return nil
		},
	}
	return cmd
}
