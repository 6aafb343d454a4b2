package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/shopfront/internal/app"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "shopfront: %v\n", err)
		return 1
	}
	return 0
}

// globalFlags are shared by the TUI and every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var (
		flags globalFlags
		view  string
		route string
	)

	root := &cobra.Command{
		Use:   "shopfront",
		Short: "Terminal storefront with a persistent cart and checkout",
		Long: `shopfront browses a product catalog, keeps a cart, profile and order
history in a local store and places orders from the terminal.

Run without a subcommand to start the interactive UI. Several shopfront
processes sharing one data directory stay in sync.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), app.Options{
				ConfigPath: flags.configPath,
				View:       view,
				Route:      route,
				LogLevel:   flags.logLevel,
			})
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "override config path (default ~/.config/shopfront/config.toml)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	root.Flags().StringVar(&view, "view", "", `restore a catalog view, e.g. "search=lamp&filters=lighting"`)
	root.Flags().StringVar(&route, "route", "", "start view: catalog, cart, profile, history or diagnostics")

	root.AddCommand(
		cartCmd(&flags),
		ordersCmd(&flags),
		profileCmd(&flags),
		catalogCmd(&flags),
		versionCmd(),
	)
	return root
}

// openEnv opens the services for a one-shot command, logging to stderr.
func openEnv(cmd *cobra.Command, flags *globalFlags) (*app.Env, error) {
	level := flags.logLevel
	if level == "" {
		level = "warn"
	}
	return app.Open(cmd.Context(), app.Options{
		ConfigPath: flags.configPath,
		LogTo:      cmd.ErrOrStderr(),
		LogLevel:   level,
	})
}
