package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/tui"
)

const cliActor = "cli"

// resolveOrder accepts a numeric id or a BR- reference.
func resolveOrder(ctx context.Context, orders service.AdminOrderService, arg string) (*service.OrderView, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return orders.Get(ctx, id)
	}
	return orders.GetByReference(ctx, strings.ToUpper(strings.TrimSpace(arg)))
}

func init() {
	var orderCmd = &cobra.Command{
		Use:   "order",
		Short: "Order review",
	}

	var status, kind string
	var listCmd = &cobra.Command{
		Use:   "list",
		Short: "List orders and reservations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				page, err := a.services.API.AdminOrder.List(ctx, service.AdminOrderFilter{
					Status:   status,
					Kind:     kind,
					PageSize: 100,
				})
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
				fmt.Fprintln(w, "ID\tReference\tKind\tStatus\tPhone\tTotal\tCreated")
				for _, o := range page.Orders {
					created := time.Unix(o.CreatedAt, 0).In(a.infra.Location).Format("2006-01-02 15:04")
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
						o.ID, o.Reference, o.Kind, o.Status, o.Phone, tui.FormatPrice(o.Total), created)
				}
				w.Flush()
				fmt.Printf("%d order(s)\n", page.Total)
				return nil
			})
		},
	}
	listCmd.Flags().StringVar(&status, "status", "", "pending, reservation, confirmed or rejected")
	listCmd.Flags().StringVar(&kind, "kind", "", "delivery or reservation")
	orderCmd.AddCommand(listCmd)

	orderCmd.AddCommand(&cobra.Command{
		Use:   "confirm <id|reference>",
		Short: "Confirm a pending order or reservation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				order, err := resolveOrder(ctx, a.services.API.AdminOrder, args[0])
				if err != nil {
					return err
				}
				updated, err := a.services.API.AdminOrder.Confirm(ctx, order.ID, cliActor)
				if err != nil {
					return fmt.Errorf("confirm %s: %w", order.Reference, err)
				}
				a.flushNotifications(ctx)
				fmt.Printf("%s is now %s.\n", updated.Reference, updated.Status)
				return nil
			})
		},
	})

	var reason string
	var rejectCmd = &cobra.Command{
		Use:   "reject <id|reference>",
		Short: "Reject a pending order or reservation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				order, err := resolveOrder(ctx, a.services.API.AdminOrder, args[0])
				if err != nil {
					return err
				}
				updated, err := a.services.API.AdminOrder.Reject(ctx, order.ID, reason, cliActor)
				if err != nil {
					return fmt.Errorf("reject %s: %w", order.Reference, err)
				}
				a.flushNotifications(ctx)
				fmt.Printf("%s is now %s.\n", updated.Reference, updated.Status)
				return nil
			})
		},
	}
	rejectCmd.Flags().StringVar(&reason, "reason", "", "Reason shown to the customer")
	orderCmd.AddCommand(rejectCmd)

	rootCmd.AddCommand(orderCmd)
}
