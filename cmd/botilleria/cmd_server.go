package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/elchascon/botilleria/app/routes"
	"github.com/elchascon/botilleria/internal/kernel"
	"github.com/elchascon/botilleria/internal/server"
)

// botilleria serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and in-process queue workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// botilleria route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		infos := kernel.NewHTTPKernel(routes.Deps{}).Router().Routes()
		if len(infos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No named routes registered.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
