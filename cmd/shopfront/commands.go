package main

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/five82/shopfront/internal/catalogapi"
	"github.com/five82/shopfront/internal/orders"
	"github.com/five82/shopfront/internal/profile"
	"github.com/five82/shopfront/internal/shop"
)

func cartCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect or change the cart",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cart items and the total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer env.Close()
			return printCart(cmd.OutOrStdout(), env.Cart.List())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a catalog product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer env.Close()

			id := shop.ID(args[0])
			if env.Orders.Purchased(id) {
				return fmt.Errorf("product %s was already bought", id)
			}
			if err := env.Catalog.Load(cmd.Context()); err != nil {
				return err
			}
			product, ok := env.Catalog.Product(id)
			if !ok {
				return fmt.Errorf("product %s not found", id)
			}
			if err := env.Cart.Add(product); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", product.Title, product.Price)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove an item from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer env.Close()

			id := shop.ID(args[0])
			if !env.Cart.Contains(id) {
				return fmt.Errorf("product %s is not in the cart", id)
			}
			if err := env.Cart.Remove(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", id)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer env.Close()
			return env.Cart.Clear()
		},
	})
	return cmd
}

func printCart(w io.Writer, items shop.Cart) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "Cart is empty")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ID, it.Title, it.Price)
	}
	fmt.Fprintf(tw, "\tTotal\t%s\n", items.Total())
	return tw.Flush()
}

func ordersCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Show order history",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer env.Close()
			return printOrders(cmd.OutOrStdout(), env.Orders.Sorted())
		},
	})
	return cmd
}

func printOrders(w io.Writer, history shop.History) error {
	if len(history) == 0 {
		_, err := fmt.Fprintln(w, orders.EmptyMessage)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tITEMS\tTOTAL\tCUSTOMER")
	for _, o := range history {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", o.ID, o.DisplayDate(), len(o.Items), o.Amount(), o.Customer.Name)
	}
	return tw.Flush()
}

func profileCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the saved profile",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the saved profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer env.Close()

			p, ok := env.Profile.Load()
			out := cmd.OutOrStdout()
			if !ok {
				_, err := fmt.Fprintln(out, "No profile saved")
				return err
			}
			fmt.Fprintf(out, "Name:          %s\n", p.Name)
			fmt.Fprintf(out, "Email:         %s\n", p.Email)
			fmt.Fprintf(out, "Notifications: %t\n", p.Notifications)
			return nil
		},
	})

	var (
		name          string
		email         string
		notifications bool
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Update profile fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer env.Close()

			p, _ := env.Profile.Load()
			if cmd.Flags().Changed("name") {
				p.Name = name
			}
			if cmd.Flags().Changed("email") {
				p.Email = email
			}
			if cmd.Flags().Changed("notifications") {
				p.Notifications = notifications
			}

			invalid, err := env.Profile.Save(p)
			if len(invalid) > 0 {
				return invalid
			}
			if err != nil {
				return errors.New(profile.NoticeSaveFailed)
			}
			fmt.Fprintln(cmd.OutOrStdout(), profile.NoticeSaved)
			return nil
		},
	}
	set.Flags().StringVar(&name, "name", "", "display name")
	set.Flags().StringVar(&email, "email", "", "email address")
	set.Flags().BoolVar(&notifications, "notifications", false, "receive order notifications")
	cmd.AddCommand(set)
	return cmd
}

func catalogCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Catalog tools",
	}

	var (
		addr string
		file string
	)
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve a catalog document over HTTP for local development",
		Long: `Serve a catalog at /data.json together with /healthz and /metrics.
Without --file the built-in sample catalog is served.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := catalogapi.LoadCatalogFile(file)
			if err != nil {
				return err
			}
			env, err := openEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer env.Close()

			env.Logger.Warn("catalog server listening", "addr", addr, "file", file)
			return catalogapi.Serve(cmd.Context(), addr, catalogapi.NewRouter(catalogapi.ServerOptions{
				Catalog: data,
				Metrics: env.Metrics.Handler(),
				Logger:  env.Logger,
			}))
		},
	}
	serve.Flags().StringVar(&addr, "addr", "127.0.0.1:8787", "listen address")
	serve.Flags().StringVar(&file, "file", "", "catalog JSON file (default: built-in sample)")
	cmd.AddCommand(serve)
	return cmd
}

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(out, version)
				return
			}
			fmt.Fprintf(out, "  Version:    %s\n", version)
			fmt.Fprintf(out, "  Commit:     %s\n", commit)
			fmt.Fprintf(out, "  Built:      %s\n", date)
			fmt.Fprintf(out, "  Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")
	return cmd
}
