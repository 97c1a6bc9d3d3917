// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the zenodo-fetch CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the zenodo-fetch CLI.
var rootCmd = &cobra.Command{
	Use:   "zenodo-fetch",
	Short: "Fetch records, files, and citations from Zenodo",
	Long: `zenodo-fetch retrieves scholarly deposits from the Zenodo archive. It
resolves DOIs to canonical record metadata, searches community and
keyword scopes, downloads deposit files (preferring the linked GitHub
release when one exists), harvests whole communities over OAI-PMH, and
formats citations.

Downloads are registered in a local catalog so repeated runs can see
what is already on disk.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./zenodo-fetch.yaml or ~/.config/zenodo-fetch/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("zenodo-fetch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "zenodo-fetch"))
		}
	}

	viper.SetEnvPrefix("ZENODO_FETCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
