package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/viant/vecsearch/vector"
)

// errUnhealthy is returned by doctor when a check fails.
var errUnhealthy = errors.New("doctor: problems found")

func newDoctorCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostics",
		Long:  "Check the configuration and the stored vectors for dimension drift and degenerate vectors.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), cmd.ErrOrStderr(), func(a *app) error {
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "%-12s %s (%s)\n", "Store:", a.cfg.Store.Backend, a.cfg.Store.Path)
				fmt.Fprintf(w, "%-12s %s, index %s\n", "Search:", a.cfg.Search.Metric, a.cfg.Search.Index)
				fmt.Fprintf(w, "%-12s %s\n", "Embedder:", a.cfg.Embed.Text.Provider)

				expected := map[vector.Kind]int{
					vector.KindImage: a.cfg.Embed.Image.Bins * a.cfg.Embed.Image.Bins * a.cfg.Embed.Image.Bins,
					vector.KindText:  a.cfg.Embed.Text.Dimension,
				}
				healthy := true
				for _, kind := range []vector.Kind{vector.KindImage, vector.KindText} {
					rep, err := vector.Inspect(cmd.Context(), a.store, kind)
					if err != nil {
						return err
					}
					if !reportKind(w, rep, expected[kind]) {
						healthy = false
					}
				}
				if !healthy {
					return errUnhealthy
				}
				return nil
			})
		},
	}
}

// reportKind prints one kind's report and returns false when searches of
// that kind would fail or silently skip records.
func reportKind(w io.Writer, rep vector.Report, expectedDim int) bool {
	label := fmt.Sprintf("%s:", rep.Kind)
	fmt.Fprintf(w, "%-12s %d records, %d missing, %d degenerate\n", label, rep.Records, rep.Missing, rep.Degenerate)
	ok := true
	dims := slices.Sorted(maps.Keys(rep.Dimensions))
	if !rep.Consistent() {
		fmt.Fprintf(w, "%-12s mixed dimensions %v\n", "", dims)
		ok = false
	}
	for _, d := range dims {
		if d != expectedDim {
			fmt.Fprintf(w, "%-12s %d vectors of dim %d, embedder produces %d\n", "", rep.Dimensions[d], d, expectedDim)
			ok = false
		}
	}
	if rep.Degenerate > 0 {
		ok = false
	}
	return ok
}
