package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	cartapp "github.com/dwikikusuma/storefront-cart/internal/cart/app"
	cartdomain "github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	catalogdomain "github.com/dwikikusuma/storefront-cart/internal/catalog/domain"
	checkoutdomain "github.com/dwikikusuma/storefront-cart/internal/checkout/domain"
	"github.com/dwikikusuma/storefront-cart/internal/storefront"
	"github.com/dwikikusuma/storefront-cart/pkg/clock"
	"github.com/dwikikusuma/storefront-cart/pkg/config"
	"github.com/dwikikusuma/storefront-cart/pkg/logger"
)

type cli struct {
	loadConfig func() (config.Config, error)
	clock      clock.Clock
	stdout     io.Writer
	stderr     io.Writer
}

func newRootCmd(c cli) *cobra.Command {
	root := &cobra.Command{
		Use:          "storefront",
		Short:        "Work with the storefront cart from the terminal",
		SilenceUsage: true,
	}
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	root.AddCommand(c.cartCmd(), c.productsCmd(), c.checkoutCmd())
	return root
}

// withApp opens the configured storefront, runs fn, and flushes the cart
// back to storage.
func (c cli) withApp(ctx context.Context, fn func(app *storefront.App) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(logger.Options{
		Service: "storefront-cli",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
		Writer:  c.stderr,
	})

	app, err := storefront.New(ctx, cfg, storefront.Options{Clock: c.clock, Logger: log})
	if err != nil {
		return err
	}
	app.Start(ctx)

	runErr := fn(app)

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Close(closeCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

type variantFlags struct {
	size  string
	color string
}

func (v *variantFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&v.size, "size", "", "variant size")
	cmd.Flags().StringVar(&v.color, "color", "", "variant color")
}

func (v variantFlags) variant() cartdomain.Variant {
	return cartdomain.Variant{Size: v.size, Color: v.color}
}

func lineKey(productID string, v variantFlags) (cartdomain.Key, error) {
	if strings.TrimSpace(productID) == "" {
		return "", fmt.Errorf("product id must not be blank")
	}
	return cartdomain.NewKey(productID, v.variant()), nil
}

func (c cli) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the cart",
	}

	var addVariant variantFlags
	var qty int
	add := &cobra.Command{
		Use:   "add <product>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if qty < 1 {
				return fmt.Errorf("--qty must be at least 1")
			}
			return c.withApp(cmd.Context(), func(app *storefront.App) error {
				p, err := app.Catalog.GetProduct(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("product %q: %w", args[0], err)
				}
				if !p.Offers(addVariant.size, addVariant.color) {
					return fmt.Errorf("%s does not come in that size or color", p.Handle)
				}
				state := app.Cart.AddLine(p.ID, addVariant.variant(), qty)
				return c.printCart(cmd.Context(), app, state)
			})
		},
	}
	add.Flags().IntVar(&qty, "qty", 1, "quantity to add")
	addVariant.bind(add)

	var removeVariant variantFlags
	remove := &cobra.Command{
		Use:   "remove <product>",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := lineKey(args[0], removeVariant)
			if err != nil {
				return err
			}
			return c.withApp(cmd.Context(), func(app *storefront.App) error {
				state := app.Cart.RemoveLine(key)
				return c.printCart(cmd.Context(), app, state)
			})
		},
	}
	removeVariant.bind(remove)

	var setVariant variantFlags
	set := &cobra.Command{
		Use:   "set <product> <quantity>",
		Short: "Set the quantity of a line; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := lineKey(args[0], setVariant)
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity %q: %w", args[1], err)
			}
			return c.withApp(cmd.Context(), func(app *storefront.App) error {
				state := app.Cart.SetQuantity(key, n)
				return c.printCart(cmd.Context(), app, state)
			})
		},
	}
	setVariant.bind(set)

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(app *storefront.App) error {
				return c.printCart(cmd.Context(), app, app.Cart.Snapshot())
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(app *storefront.App) error {
				return c.printCart(cmd.Context(), app, app.Cart.Clear())
			})
		},
	}

	cmd.AddCommand(add, remove, set, show, clearCmd)
	return cmd
}

func (c cli) printCart(ctx context.Context, app *storefront.App, state cartdomain.CartState) error {
	if state.IsEmpty() {
		fmt.Fprintln(c.stdout, "cart is empty")
		return nil
	}

	totals, err := cartapp.ComputeTotals(ctx, state, app.Resolver, nil)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tVARIANT\tQTY")
	for _, ln := range state.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", ln.ProductID, variantLabel(ln.Variant), ln.Quantity)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(c.stdout, "%d lines, %d items, total %s\n", totals.Lines, totals.Units,
		checkoutdomain.FormatMoney(checkoutdomain.Money{Currency: totals.Currency, Amount: totals.Amount}))
	if len(totals.Missing) > 0 {
		fmt.Fprintf(c.stdout, "not priced: %d lines\n", len(totals.Missing))
	}
	return nil
}

func variantLabel(v cartdomain.Variant) string {
	parts := make([]string, 0, 2)
	if v.Size != "" {
		parts = append(parts, v.Size)
	}
	if v.Color != "" {
		parts = append(parts, v.Color)
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "/")
}

func (c cli) productsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products [query]",
		Short: "List the catalog, or search it by name or category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(app *storefront.App) error {
				var (
					list []catalogdomain.Product
					err  error
				)
				if len(args) == 1 {
					list, err = app.Catalog.Search(cmd.Context(), args[0])
				} else {
					list, _, err = app.Catalog.ListProducts(cmd.Context(), "", 100, "")
				}
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE")
				for _, p := range list {
					price := checkoutdomain.Money{Currency: p.Price.Currency, Amount: p.Price.Amount}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, checkoutdomain.FormatMoney(price))
				}
				return tw.Flush()
			})
		},
	}
}

func (c cli) checkoutCmd() *cobra.Command {
	var cust checkoutdomain.Customer
	var method string
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place the order and print the WhatsApp link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cust.DeliveryMethod = checkoutdomain.DeliveryMethod(method)
			return c.withApp(cmd.Context(), func(app *storefront.App) error {
				r, err := app.Checkout.Complete(cmd.Context(), cust)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.stdout, "order %s placed, total %s\n", r.OrderID, checkoutdomain.FormatMoney(r.Quote.Total))
				if r.URL != "" {
					fmt.Fprintln(c.stdout, r.URL)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&cust.Name, "name", "", "customer name")
	cmd.Flags().StringVar(&cust.Phone, "phone", "", "customer phone number")
	cmd.Flags().StringVar(&cust.Notes, "notes", "", "notes for the shop")
	cmd.Flags().StringVar(&cust.Address, "address", "", "delivery address")
	cmd.Flags().StringVar(&method, "delivery", string(checkoutdomain.DeliveryPickup), "pickup or delivery")
	return cmd
}
