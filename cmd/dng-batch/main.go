// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the dng-batch CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the dng-batch CLI.
var rootCmd = &cobra.Command{
	Use:   "dng-batch",
	Short: "Batch-convert RAW camera files to DNG with Adobe DNG Converter",
	Long: `dng-batch reads a list of folders and runs Adobe DNG Converter over the
RAW files in each one. Files the converter rejects are copied unchanged so
nothing is lost, output names never overwrite existing files, and every
folder gets its own conversion log.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./dng-batch.yaml or ~/.config/dng-batch/dng-batch.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("dng-batch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "dng-batch"))
		}
	}

	viper.SetEnvPrefix("DNG_BATCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
