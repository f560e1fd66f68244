package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"jsdeps/internal/config"
	"jsdeps/internal/logging"
)

var (
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize jsdeps configuration",
	Long:  "Creates a .jsdeps/ directory with default configuration in the project root",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Force reinitialization (removes existing .jsdeps directory)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	logger := logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.InfoLevel,
	})

	root, err := filepath.Abs(rootFlag)
	if err != nil {
		return err
	}

	cfgDir := filepath.Join(root, ".jsdeps")
	if _, statErr := os.Stat(cfgDir); statErr == nil {
		if !initForce {
			// Idempotent behavior: already initialized is success
			fmt.Println("jsdeps already initialized.")
			fmt.Printf("Configuration at: %s\n", filepath.Join(cfgDir, "config.json"))
			fmt.Println("\nRun 'jsdeps init --force' to reinitialize.")
			return nil
		}
		if removeErr := os.RemoveAll(cfgDir); removeErr != nil {
			return fmt.Errorf("remove existing .jsdeps directory: %w", removeErr)
		}
		logger.Info("Removed existing .jsdeps directory", nil)
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(root); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	configPath := filepath.Join(cfgDir, "config.json")
	logger.Info("jsdeps initialized", map[string]interface{}{
		"config_path": configPath,
	})

	fmt.Println("jsdeps initialized successfully!")
	fmt.Printf("Configuration written to: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Set \"platform\" in the config for platform-specific builds")
	fmt.Println("  2. Run 'jsdeps graph --entry <path>' to collect a dependency graph")
	return nil
}
