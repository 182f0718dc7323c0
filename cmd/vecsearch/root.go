package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/viant/vecsearch/internal/config"
)

// cli carries the per-invocation viper instance shared by subcommands.
type cli struct {
	v *viper.Viper
}

// NewRootCmd creates the root vecsearch command with all subcommands
// registered.
func NewRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}
	root := &cobra.Command{
		Use:           "vecsearch",
		Short:         "vecsearch - product similarity search",
		Long:          "vecsearch stores products with image and text embeddings and ranks them by vector similarity.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.initViper(cmd)
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().String("backend", "", "store backend (sqlite, badger, memory)")
	root.PersistentFlags().String("store", "", "store path")
	root.PersistentFlags().String("index", "", "candidate index (none, brute, cover, sql)")

	root.AddCommand(
		newAddCmd(c),
		newRemoveCmd(c),
		newListCmd(c),
		newSearchCmd(c),
		newIdentifyCmd(c),
		newImportCmd(c),
		newDoctorCmd(c),
	)
	return root
}

// initViper applies defaults, environment, the optional config file and
// flag bindings so that flag > env > file > defaults.
func (c *cli) initViper(cmd *cobra.Command) error {
	v := c.v
	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	} else {
		v.SetConfigName("vecsearch")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/vecsearch")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("reading config: %w", err)
			}
		}
	}

	flags := cmd.Root().PersistentFlags()
	for key, flag := range map[string]string{
		"store.backend": "backend",
		"store.path":    "store",
		"search.index":  "index",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("binding %s flag: %w", flag, err)
		}
	}
	return nil
}

func (c *cli) config() (*config.Config, error) {
	return config.FromViper(c.v)
}
