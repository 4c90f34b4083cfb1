package main

import (
	"fmt"
	"text/tabwriter"

	"storefront/cart/internal/domain"

	"github.com/spf13/cobra"
)

func newProductsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the catalog",
	}

	var query domain.ProductQuery
	list := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := a.container.Client.GetProducts(cmd.Context(), query)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK")
			for _, p := range page.Items {
				fmt.Fprintf(tw, "%s\t%s\t%.2f\t%d\n", p.ID, p.Name, p.Price, p.Stock)
			}
			return tw.Flush()
		},
	}
	list.Flags().IntVar(&query.Page, "page", 1, "page number")
	list.Flags().IntVar(&query.Limit, "limit", 12, "products per page")
	list.Flags().StringVar(&query.Search, "search", "", "search term")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.container.Client.GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\nPrice: %.2f  Weight: %.2f  Stock: %d  In stock: %t\n",
				p.ID, p.Name, p.Price, p.Weight, p.Stock, p.InStock)
			return nil
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved list and session cookie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.container.Service.Logout(cmd.Context())
		},
	}
}
