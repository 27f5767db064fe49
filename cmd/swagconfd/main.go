// Command swagconfd is the manual, human-facing front end over the
// orchestrator: the automation dispatch surface of spec §6 is out of scope,
// but operators still need a way to exercise list/create/health/backups
// without writing a client.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oakridge-labs/swagconfd/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "swagconfd",
	Short: "swagconfd manages SWAG nginx gateway configurations",
	Long: `swagconfd renders, edits, and inspects the nginx reverse-proxy
configurations of a SWAG gateway deployment: template-based creation,
structural field updates, MCP location insertion, health probing, and
backup lifecycle management.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, config.ErrInvalidConfig) {
			os.Exit(int(config.ExitInvalidConfig))
		}
		os.Exit(int(config.ExitUnhandledFailure))
	}
}

func init() {
	rootCmd.AddCommand(
		newListCmd(),
		newReadCmd(),
		newCreateCmd(),
		newDefaultsCmd(),
		newBackupsCmd(),
		newHealthCmd(),
		newServeCmd(),
	)
}
