// Package cmd provides command-line interface functionality for DiscTools.
// DiscTools is a collection of utilities for extracting files and system
// data from GameCube and Wii disc images.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
// It provides the main entry point for the DiscTools application.
var rootCmd = &cobra.Command{
	Use:   "disctools",
	Short: "Tools for extracting GameCube and Wii disc images",
	Long: `DiscTools - A collection of utilities for extracting files and system
data from GameCube and Wii disc images.

Currently supports:
  - Disc filesystem dumps (whole tree or a single file)
  - System data export (apploader.img and boot.dol)
  - Disc header and boot region summaries

Examples:
  disctools disc dump game.iso ./output/
  disctools disc dump -v --manifest manifest.yaml game.iso ./output/
  disctools disc sys game.iso ./sys/
  disctools disc file game.iso opening.bnr ./opening.bnr
  disctools disc cat --offset 0x20 --length 0x40 game.iso opening.bnr
  disctools disc info game.iso

Settings can also come from a YAML file (--config) or from the
DISCTOOLS_CHUNK_SIZE, DISCTOOLS_VERBOSE, DISCTOOLS_RECURSIVE and
DISCTOOLS_EXISTING environment variables.

Use 'disctools [command] --help' for more information about a command.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main() and serves as the entry point for command execution.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// init initializes the root command with flags and configuration settings.
func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output with detailed entry information")
}
