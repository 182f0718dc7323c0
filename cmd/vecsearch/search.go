package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/viant/vecsearch/catalog"
)

func newSearchCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Rank products by similarity",
	}
	cmd.PersistentFlags().IntP("top", "k", 10, "number of results to print (0 prints all)")

	text := &cobra.Command{
		Use:   "text <query>...",
		Short: "Search by name and description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			top, _ := cmd.Flags().GetInt("top")
			return c.withApp(cmd.Context(), cmd.ErrOrStderr(), func(a *app) error {
				hits, err := a.catalog.SearchText(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				return printHits(cmd.OutOrStdout(), hits, top)
			})
		},
	}
	image := &cobra.Command{
		Use:   "image <path>",
		Short: "Search by image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			top, _ := cmd.Flags().GetInt("top")
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading image: %w", err)
			}
			return c.withApp(cmd.Context(), cmd.ErrOrStderr(), func(a *app) error {
				hits, err := a.catalog.SearchImage(cmd.Context(), data)
				if err != nil {
					return err
				}
				return printHits(cmd.OutOrStdout(), hits, top)
			})
		},
	}
	cmd.AddCommand(text, image)
	return cmd
}

func newIdentifyCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identify",
		Short: "Print the single best matching product",
	}
	text := &cobra.Command{
		Use:   "text <query>...",
		Short: "Identify a product from text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), cmd.ErrOrStderr(), func(a *app) error {
				hit, err := a.catalog.IdentifyText(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				return printHit(cmd.OutOrStdout(), hit)
			})
		},
	}
	image := &cobra.Command{
		Use:   "image <path>",
		Short: "Identify a product from an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading image: %w", err)
			}
			return c.withApp(cmd.Context(), cmd.ErrOrStderr(), func(a *app) error {
				hit, err := a.catalog.IdentifyImage(cmd.Context(), data)
				if err != nil {
					return err
				}
				return printHit(cmd.OutOrStdout(), hit)
			})
		},
	}
	cmd.AddCommand(text, image)
	return cmd
}

func printHits(out io.Writer, hits []catalog.Hit, top int) error {
	if top > 0 && top < len(hits) {
		hits = hits[:top]
	}
	if len(hits) == 0 {
		_, err := fmt.Fprintln(out, "no results")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSCORE\tID\tNAME")
	for i, h := range hits {
		fmt.Fprintf(w, "%d\t%.4f\t%s\t%s\n", i+1, h.Score, h.Product.ID, h.Product.Name)
	}
	return w.Flush()
}

func printHit(out io.Writer, hit catalog.Hit) error {
	_, err := fmt.Fprintf(out, "%s\t%.4f\t%s\n", hit.Product.ID, hit.Score, hit.Product.Name)
	return err
}
