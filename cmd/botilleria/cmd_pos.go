package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/elchascon/botilleria/app/services"
	"github.com/elchascon/botilleria/internal/server"
	"github.com/elchascon/botilleria/pkg/database"
	"github.com/elchascon/botilleria/pkg/event"
	"github.com/elchascon/botilleria/pkg/queue"
)

var (
	voidReasonFlag  string
	alertsLimitFlag int
)

// withRuntime boots the app, runs fn and publishes any events fn queued
// before the process exits.
func withRuntime(cmd *cobra.Command, fn func(ctx context.Context) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := server.Boot(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := fn(ctx); err != nil {
		return err
	}
	queue.Default().Drain(ctx)
	return nil
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}

// botilleria sale:void <id> --reason
var saleVoidCmd = &cobra.Command{
	Use:   "sale:void <sale-id>",
	Short: "Void a sale and return its units to stock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withRuntime(cmd, func(ctx context.Context) error {
			svc := services.NewSaleService(database.DB, event.Default())
			if err := svc.Void(ctx, id, nil, voidReasonFlag); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sale %d voided.\n", id)
			return nil
		})
	},
}

// botilleria shift:start <worker-id>
var shiftStartCmd = &cobra.Command{
	Use:   "shift:start <worker-id>",
	Short: "Open (or return) today's shift for a worker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withRuntime(cmd, func(ctx context.Context) error {
			sh, err := services.NewShiftService(database.DB).GetOrCreateActive(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Shift %d (%s %s) active since %s.\n",
				sh.ID, sh.ShiftType, sh.Date, sh.StartedAt.Format("15:04"))
			return nil
		})
	},
}

// botilleria shift:close <shift-id>
var shiftCloseCmd = &cobra.Command{
	Use:   "shift:close <shift-id>",
	Short: "Close an active shift",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withRuntime(cmd, func(ctx context.Context) error {
			sh, err := services.NewShiftService(database.DB).Close(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Shift %d closed at %s.\n", sh.ID, sh.EndedAt.Format("15:04"))
			return nil
		})
	},
}

// botilleria alerts
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List unacknowledged low-stock alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context) error {
			open, err := services.NewAlertService(database.DB).Open(ctx, alertsLimitFlag)
			if err != nil {
				return err
			}
			if len(open) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No open alerts.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tSKU\tPRODUCT\tMESSAGE\tCREATED")
			for _, a := range open {
				sku, name := "", ""
				if a.Product != nil {
					sku, name = a.Product.SKU, a.Product.Name
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", a.ID, sku, name, a.Message, a.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		})
	},
}

func init() {
	saleVoidCmd.Flags().StringVarP(&voidReasonFlag, "reason", "r", "", "Why the sale is voided")
	alertsCmd.Flags().IntVarP(&alertsLimitFlag, "limit", "n", 50, "Maximum alerts to list")
}
