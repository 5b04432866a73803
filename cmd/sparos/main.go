// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the sparos CLI, which resolves
// Bungie "Name#1234" handles into a validated Destiny 2 account.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/sparos/internal/logging"
	"github.com/pdiddy/sparos/internal/secrets"
	"github.com/pdiddy/sparos/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// errReported marks a failure whose details were already written to
// stdout; main exits non-zero without printing it again.
var errReported = errors.New("failure already reported")

// logger is built from --loglevel and --logformat before any command runs.
var logger logrus.FieldLogger

// rootCmd is the base command for the sparos CLI.
var rootCmd = &cobra.Command{
	Use:   "sparos",
	Short: "Resolve Bungie player handles into Destiny 2 accounts",
	Long: `sparos resolves a Bungie handle such as "Sparrow#1234" into one validated
Destiny 2 account and the full set of platform memberships behind it.

The Bungie.net search endpoint often returns several candidates or none.
sparos disambiguates by cross-save identity, probes account stats to confirm
a candidate has Destiny data, and records the current job so an interrupted
resolution can be restored.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.FromFlags(cmd, os.Stderr)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./sparos.yaml or ~/.config/sparos/sparos.yaml)")
	rootCmd.PersistentFlags().String("api-key", "", "Bungie.net API key (default: $SPAROS_API_KEY or .secrets/bungie-api-key)")
	rootCmd.PersistentFlags().String("api-base", types.DefaultAPIBase, "Bungie.net platform base URL")
	rootCmd.PersistentFlags().Duration("timeout", types.DefaultTimeout, "HTTP request timeout")
	rootCmd.PersistentFlags().Int("max-pages", types.DefaultMaxPages, "maximum backup search pages to fetch")
	rootCmd.PersistentFlags().String("state-dir", types.DefaultStateDir, "directory holding the persisted job record")
	logging.RegisterFlags(rootCmd)

	bindFlag("api_key", "api-key")
	bindFlag("api_base", "api-base")
	bindFlag("timeout", "timeout")
	bindFlag("max_pages", "max-pages")
	bindFlag("state_dir", "state-dir")
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("sparos")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "sparos"))
		}
	}

	viper.SetEnvPrefix("SPAROS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// configFrom builds the runtime configuration from v, filling defaults for
// anything unset.
func configFrom(v *viper.Viper) types.Config {
	v.SetDefault("api_base", types.DefaultAPIBase)
	v.SetDefault("timeout", types.DefaultTimeout)
	v.SetDefault("user_agent", types.DefaultUserAgent)
	v.SetDefault("max_pages", types.DefaultMaxPages)
	v.SetDefault("state_dir", types.DefaultStateDir)

	timeout := v.GetDuration("timeout")
	if timeout <= 0 {
		timeout = types.DefaultTimeout
	}

	return types.Config{
		Directory: types.DirectoryConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   timeout,
				UserAgent: v.GetString("user_agent"),
			},
			APIBase: v.GetString("api_base"),
			APIKey:  v.GetString("api_key"),
		},
		Resolver: types.ResolverConfig{MaxPages: v.GetInt("max_pages")},
		Store:    types.StoreConfig{StateDir: v.GetString("state_dir")},
	}
}

// loadConfig reads the global viper configuration and resolves the API
// key, falling back to the secrets directory.
func loadConfig() (types.Config, error) {
	cfg := configFrom(viper.GetViper())
	key, err := secrets.ResolveAPIKey(cfg.Directory.APIKey, secrets.DefaultDir, logger)
	if err != nil {
		return types.Config{}, err
	}
	cfg.Directory.APIKey = key
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}
