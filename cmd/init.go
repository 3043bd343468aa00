package cmd

import (
	"fmt"
	"os"

	"github.com/pders01/casewatch/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a sample configuration file",
	Long: `Write a sample config.yaml to the current directory.

Edit the generated file with your receipt numbers, Home Assistant
settings, and the path to your exported browser cookies before
running 'casewatch check'.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := "config.yaml"
	if cfgFile != "" {
		path = cfgFile
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	data, err := yaml.Marshal(config.Sample())
	if err != nil {
		return fmt.Errorf("failed to marshal sample config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("✓ Sample configuration created: %s\n", path)
	fmt.Println("  Edit it with your actual values, then export cookies:")
	fmt.Println("  1. Log in to my.uscis.gov in your browser")
	fmt.Println("  2. Export cookies in Netscape format (browser extension)")
	fmt.Println("  3. Save them at the path set in browser_cookies_file")

	return nil
}
