package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakridge-labs/swagconfd/internal/orchestrator"
)

func newBackupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backups",
		Short: "Inspect and prune the backup directory",
	}
	cmd.AddCommand(newBackupsListCmd(), newBackupsCleanupCmd())
	return cmd
}

func newBackupsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, _, err := bootstrap()
			if err != nil {
				return err
			}
			defer orch.Close()

			ctx := orchestrator.NewOperationContext(context.Background())
			backups, err := orch.BackupsList(ctx)
			if err != nil {
				return err
			}
			for _, b := range backups {
				fmt.Printf("%s  %10d  %s\n", b.Timestamp.Format("2006-01-02 15:04:05.000"), b.Size, b.Name)
			}
			return nil
		},
	}
}

func newBackupsCleanupCmd() *cobra.Command {
	var retentionDays int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete backups older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, _, err := bootstrap()
			if err != nil {
				return err
			}
			defer orch.Close()

			ctx := orchestrator.NewOperationContext(context.Background())
			removed, err := orch.BackupsCleanup(ctx, retentionDays)
			if err != nil {
				return err
			}
			fmt.Printf("removed %d backup(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().IntVar(&retentionDays, "retention-days", 0, "override the configured retention window (0 = use configured default)")
	return cmd
}
