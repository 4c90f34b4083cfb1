package main

import (
	"fmt"
	"io"

	"storefront/cart/internal/cart"
	"storefront/cart/internal/config"
	"storefront/cart/internal/container"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type app struct {
	configPath string
	container  *container.Container
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront cart client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file (default ./config.yaml)")

	root.AddCommand(
		newCartCmd(a),
		newProductsCmd(a),
		newLogoutCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	log.SetLevel(level)

	stderr := cmd.ErrOrStderr()
	c, err := container.New(cmd.Context(), cfg, toastPrinter(stderr), browserPrinter(cmd.OutOrStdout()))
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	a.container = c
	return nil
}

// close releases the container. Called from main so error paths, where
// cobra skips post-run hooks, close it too.
func (a *app) close() {
	if a.container == nil {
		return
	}
	if err := a.container.Close(); err != nil {
		log.Warnf("Failed to close container: %v", err)
	}
	a.container = nil
}

// toastPrinter shows store notifications on the terminal.
func toastPrinter(w io.Writer) cart.Notifier {
	return cart.NotifierFunc(func(title, description string) {
		fmt.Fprintf(w, "%s: %s\n", title, description)
	})
}

// browserPrinter stands in for a page redirect: it prints where to go.
func browserPrinter(w io.Writer) cart.Navigator {
	return cart.NavigatorFunc(func(url string) error {
		_, err := fmt.Fprintf(w, "Continue checkout at %s\n", url)
		return err
	})
}
