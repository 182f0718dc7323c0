package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/viant/vecsearch/catalog"
)

// seedFile is the YAML layout accepted by import. Image paths are relative
// to the seed file.
type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

type seedProduct struct {
	catalog.Product `yaml:",inline"`
	Image           string `yaml:"image"`
}

func loadSeed(path string) ([]catalog.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	base := filepath.Dir(path)
	out := make([]catalog.Product, 0, len(seed.Products))
	for i, sp := range seed.Products {
		p := sp.Product
		if sp.Image == "" {
			return nil, fmt.Errorf("seed product %d (%s): image is required", i, p.Name)
		}
		imagePath := sp.Image
		if !filepath.IsAbs(imagePath) {
			imagePath = filepath.Join(base, imagePath)
		}
		if p.Image, err = os.ReadFile(imagePath); err != nil {
			return nil, fmt.Errorf("seed product %d (%s): %w", i, p.Name, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func newImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import <seed.yaml>",
		Short: "Add every product listed in a YAML seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := loadSeed(args[0])
			if err != nil {
				return err
			}
			return c.withApp(cmd.Context(), cmd.ErrOrStderr(), func(a *app) error {
				for _, p := range products {
					added, err := a.catalog.Add(cmd.Context(), p)
					if err != nil {
						return fmt.Errorf("importing %q: %w", p.Name, err)
					}
					if _, err := fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", added.ID); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
