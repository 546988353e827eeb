package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"stratus-gw/stratus/pkg/config"
	"stratus-gw/stratus/pkg/routing"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration file, apply defaults and environment
overrides, and report whether the result is valid. The model catalog is
loaded too when routing.catalog_path is set.

Examples:
  # Validate the default config
  stratus validate

  # Validate a specific config
  stratus validate --config /etc/stratus/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Configuration valid (%d backends, %d keys)\n", len(cfg.Backends), len(cfg.Auth.Keys))

	if cfg.Routing.CatalogPath != "" {
		models, err := routing.LoadCatalog(cfg.Routing.CatalogPath)
		if err != nil {
			return fmt.Errorf("model catalog: %w", err)
		}
		fmt.Printf("✓ Model catalog valid (%d models)\n", len(models))
	} else {
		fmt.Println("  Auto-routing disabled (no routing.catalog_path)")
	}

	return nil
}
