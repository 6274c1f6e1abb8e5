// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the script-engine CLI.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/script-engine/internal/config"
	"github.com/pdiddy/script-engine/internal/logging"
	"github.com/pdiddy/script-engine/internal/secrets"
	"github.com/pdiddy/script-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is resolved once in PersistentPreRunE and never mutated afterwards.
	cfg types.Config
	log *logrus.Logger

	configFile string
	configErr  error
)

// rootCmd is the base command for the script-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "script-engine",
	Short: "Generate French YouTube topics, research and scripts",
	Long: `script-engine turns a theme into video ideas, a research digest and a
sectioned narration script. Every command answers even when no upstream
model or search credential is configured: the pipeline falls back along
a fixed chain of adapters and ends on deterministic templates.

Credentials come from the environment (SCRIPT_ENGINE_* or the usual
ANTHROPIC_API_KEY, OPENAI_API_KEY, TAVILY_API_KEY), a .env file, the
config file, or files under .secrets/.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return configErr
		}

		resolved, err := config.Resolve(viper.GetViper())
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		log = logging.New(resolved.Log.Level, resolved.Log.Format)

		s, err := secrets.Load(secrets.DefaultDir, log)
		if err != nil {
			return err
		}
		if used := s.Fill(&resolved); len(used) > 0 {
			log.Debugf("credentials from %s: %s", secrets.DefaultDir, strings.Join(used, ", "))
		}

		cfg = resolved
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./script-engine.yaml or ~/.config/script-engine/script-engine.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	config.LoadDotEnv(nil)

	used, err := config.Setup(viper.GetViper(), configFile)
	if err != nil {
		configErr = err
		return
	}
	if used != "" {
		fmt.Fprintln(os.Stderr, "Using config file:", used)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
