// Command botilleria runs the point-of-sale API and its maintenance tasks.
//
//	botilleria migrate && botilleria seed
//	botilleria serve
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Migrations and seeders register themselves from init().
	_ "github.com/elchascon/botilleria/database/migrations"
	_ "github.com/elchascon/botilleria/database/seeders"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "botilleria",
	Short:         "Liquor store point of sale",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	// Workers
	rootCmd.AddCommand(queueWorkCmd)

	// Store operations
	rootCmd.AddCommand(saleVoidCmd)
	rootCmd.AddCommand(shiftStartCmd)
	rootCmd.AddCommand(shiftCloseCmd)
	rootCmd.AddCommand(alertsCmd)
}
