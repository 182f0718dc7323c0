package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/viant/vecsearch/catalog"
)

func newAddCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		Long:  "Embed a product's image and name/description and store it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			imagePath, _ := flags.GetString("image")
			image, err := os.ReadFile(imagePath)
			if err != nil {
				return fmt.Errorf("reading image: %w", err)
			}
			p := catalog.Product{Image: image}
			p.ID, _ = flags.GetString("id")
			p.Name, _ = flags.GetString("name")
			p.Description, _ = flags.GetString("description")
			p.StockCount, _ = flags.GetInt("stock")
			p.Price, _ = flags.GetFloat64("price")

			return c.withApp(cmd.Context(), cmd.ErrOrStderr(), func(a *app) error {
				added, err := a.catalog.Add(cmd.Context(), p)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", added.ID)
				return err
			})
		},
	}
	cmd.Flags().String("id", "", "product id (generated when empty)")
	cmd.Flags().String("name", "", "product name")
	cmd.Flags().String("description", "", "product description")
	cmd.Flags().Int("stock", 0, "stock count")
	cmd.Flags().Float64("price", 0, "price")
	cmd.Flags().String("image", "", "path to a JPEG or PNG image")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}

func newRemoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>...",
		Short: "Remove products",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), cmd.ErrOrStderr(), func(a *app) error {
				for _, id := range args {
					if err := a.catalog.Remove(cmd.Context(), id); err != nil {
						return err
					}
					if _, err := fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), cmd.ErrOrStderr(), func(a *app) error {
				products, err := a.catalog.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(products) == 0 {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), "no products")
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tSTOCK\tPRICE\tDESCRIPTION")
				for _, p := range products {
					fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%s\n", p.ID, p.Name, p.StockCount, p.Price, p.Description)
				}
				return w.Flush()
			})
		},
	}
}
