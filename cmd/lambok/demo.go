package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tarun9121/project-lambok/db"
	"github.com/Tarun9121/project-lambok/models"
	"github.com/Tarun9121/project-lambok/repo"
)

func newDemoCmd(a *app) *cobra.Command {
	var persist bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Build pocoMobile, derive samsung from it and print both",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			poco, samsung := demoCatalog()
			printDemo(cmd.OutOrStdout(), poco, samsung)
			if !persist {
				return nil
			}

			d, err := a.openDB(nil, nil)
			if err != nil {
				return err
			}
			defer d.Close()
			return persistDemo(cmd.Context(), d, poco, samsung)
		},
	}

	cmd.Flags().BoolVar(&persist, "persist", false, "also store both products in the configured database")
	return cmd
}

// demoCatalog builds pocoMobile and derives samsung from it; samsung keeps
// pocoMobile's price.
func demoCatalog() (pocoMobile, samsung models.Product) {
	pocoMobile = models.NewProductBuilder().
		SetProductID(12).
		SetProductName("pocoMobile").
		SetPrice(100).
		Build()

	samsung = pocoMobile.ToBuilder().
		SetProductID(10).
		SetProductName("samsung").
		Build()
	return pocoMobile, samsung
}

func printDemo(w io.Writer, products ...models.Product) {
	args := make([]any, len(products))
	for i, p := range products {
		args[i] = p
	}
	fmt.Fprintln(w, args...)
}

// persistDemo stores the products in one transaction, retrying when the
// database reports lock contention.
func persistDemo(ctx context.Context, d *db.DB, products ...models.Product) error {
	retry := db.RetryConfig{MaxAttempts: 3, Delay: 100 * time.Millisecond, RetryOn: db.IsDeadlock}
	return db.WithRetry(ctx, retry, func() error {
		return repo.StoreProducts(ctx, d, products)
	})
}
