package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "stratus",
	Short: "Stratus - gateway for LLM inference backends",
	Long: `Stratus is a self-hosted gateway that fronts a fleet of
Ollama-compatible inference servers.

It admits requests by API key and client IP, enforces per-key rate
limits, picks a concrete model for "auto" requests, selects a backend
hosting the target model, retries transient failures, and relays the
streaming response while recording usage.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
}
