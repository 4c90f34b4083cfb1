package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"storefront/cart/internal/cart"
	"storefront/cart/internal/client"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newCartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and change the cart",
	}

	var qty int
	add := &cobra.Command{
		Use:   "add <productId>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: a.cartOp(func(ctx context.Context, store *cart.Store, args []string) error {
			return store.Add(ctx, args[0], qty)
		}),
	}
	add.Flags().IntVar(&qty, "qty", 1, "quantity to add")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print items, saved items and totals",
			Args:  cobra.NoArgs,
			RunE:  a.cartOp(func(context.Context, *cart.Store, []string) error { return nil }),
		},
		add,
		&cobra.Command{
			Use:   "update <id> <qty>",
			Short: "Set the quantity of a cart line (0 removes it)",
			Args:  cobra.ExactArgs(2),
			RunE: a.cartOp(func(ctx context.Context, store *cart.Store, args []string) error {
				n, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid quantity %q: %w", args[1], err)
				}
				return store.UpdateQty(ctx, args[0], n)
			}),
		},
		&cobra.Command{
			Use:   "remove <id>",
			Short: "Remove a cart line",
			Args:  cobra.ExactArgs(1),
			RunE: a.cartOp(func(ctx context.Context, store *cart.Store, args []string) error {
				return store.Remove(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every cart line",
			Args:  cobra.NoArgs,
			RunE: a.cartOp(func(ctx context.Context, store *cart.Store, _ []string) error {
				return store.Clear(ctx)
			}),
		},
		&cobra.Command{
			Use:   "save <id>",
			Short: "Move a cart line to the saved-for-later list",
			Args:  cobra.ExactArgs(1),
			RunE: a.cartOp(func(_ context.Context, store *cart.Store, args []string) error {
				store.SaveForLater(args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "restore <id>",
			Short: "Move a saved item back into the cart",
			Args:  cobra.ExactArgs(1),
			RunE: a.cartOp(func(ctx context.Context, store *cart.Store, args []string) error {
				if !store.HasSaved(args[0]) {
					return fmt.Errorf("%q is not in the saved list", args[0])
				}
				return store.MoveToCart(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "checkout",
			Short: "Create a checkout session",
			Args:  cobra.NoArgs,
			RunE: a.cartOp(func(ctx context.Context, store *cart.Store, _ []string) error {
				url, err := store.CheckoutLink(ctx)
				if err == nil && url == "" {
					log.Info("Cart is empty, nothing to check out")
				}
				return err
			}),
		},
	)
	return cmd
}

// cartOp restores the session, runs op, persists the session and prints the
// resulting cart.
func (a *app) cartOp(op func(ctx context.Context, store *cart.Store, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc := a.container.Service

		if err := svc.Restore(ctx); err != nil {
			return err
		}

		err := svc.Run(ctx, func(ctx context.Context, store *cart.Store) error {
			return op(ctx, store, args)
		})
		printCart(cmd.OutOrStdout(), svc.Store())

		var authErr *client.AuthRequiredError
		if errors.As(err, &authErr) && authErr.Page != "" {
			log.Warnf("Backend served the login page %q, set backend.session_cookie", authErr.Page)
		}
		return err
	}
}

func printCart(w io.Writer, store *cart.Store) {
	snap := store.Snapshot()
	totals := store.Totals()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCT\tNAME\tQTY\tPRICE")
	for _, item := range snap.Items {
		if store.IsFee(item) {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.2f\n", item.ID, item.ProductID, item.Name, item.Qty, item.Price)
	}
	tw.Flush()

	if len(snap.Saved) > 0 {
		fmt.Fprintln(w, "\nSaved for later:")
		for _, item := range snap.Saved {
			fmt.Fprintf(w, "  %s  %s (x%d)\n", item.ID, item.Name, item.Qty)
		}
	}

	fmt.Fprintf(w, "\nItems: %d  Subtotal: %.2f  Fees: %.2f  Total: %.2f\n",
		totals.Count, totals.Subtotal, totals.Fees, totals.Total)
	if snap.BackendTotals.Weight > 0 {
		fmt.Fprintf(w, "Weight: %.2f lbs (under 20 lbs: %t)\n", snap.BackendTotals.Weight, snap.BackendTotals.UnderTwentyLbs)
	}
}
