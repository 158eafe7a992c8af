// Package cmd provides command-line interface for disc image processing.
// This file contains commands for dumping files and system data from
// GameCube and Wii disc images.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/hansbonini/disctools/pkg"
	"github.com/hansbonini/disctools/pkg/common"
	"github.com/hansbonini/disctools/pkg/config"
	"github.com/hansbonini/disctools/pkg/disc"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// discCmd represents the parent command for all disc image operations.
var discCmd = &cobra.Command{
	Use:   "disc",
	Short: "Process GameCube and Wii disc images",
	Long: `Process GameCube and Wii disc images (.iso/.gcm, unencrypted access only).

Wii input must be a decrypted partition image. Retail Wii discs keep their
game data in encrypted partitions, which are not read; use a partition
extraction tool to decrypt the game partition first.

Commands:
  dump      Extract the disc filesystem
  sys       Extract the apploader and boot DOL
  file      Extract a single file
  cat       Print part of a file to standard output
  info      Show the disc header summary

Examples:
  disctools disc dump game.iso ./output/`,
}

// discDumpCmd extracts the whole disc filesystem.
// Entries are exported in on-disc order; per-file failures are logged and the
// dump continues with the next entry.
var discDumpCmd = &cobra.Command{
	Use:   "dump [input_file] [output_directory]",
	Short: "Extract files from disc images",
	Long: `Extract files from disc images.

This command reads the disc's filesystem table and exports every file into
the output directory, recreating the directory structure. When verbose mode
is enabled (-v), it displays each entry's disc offset and size.

Output:
  - Extracted files maintain the original directory structure
  - sys/apploader.img and sys/boot.dol (when --sys is used)
  - A YAML manifest of the tree (when --manifest is used)

Example:
  disctools disc dump game.iso ./output/
  disctools disc dump --no-recursive --existing overwrite game.iso ./output/`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile := args[0]
		outputDir := args[1]

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		noRecursive, err := cmd.Flags().GetBool("no-recursive")
		if err != nil {
			return fmt.Errorf("error getting no-recursive flag: %w", err)
		}
		if noRecursive {
			cfg.Recursive = false
		}
		systemData, err := cmd.Flags().GetBool("sys")
		if err != nil {
			return fmt.Errorf("error getting sys flag: %w", err)
		}
		manifestPath, err := cmd.Flags().GetString("manifest")
		if err != nil {
			return fmt.Errorf("error getting manifest flag: %w", err)
		}

		processor, err := pkg.NewDiscProcessor(afero.NewOsFs(), cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Processing disc image: %s\n", inputFile)
		fmt.Fprintf(out, "Output directory: %s\n", outputDir)

		// Ctrl-C stops the walk at the next entry and keeps what was copied
		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, os.Interrupt)
		defer stop()

		visited := 0
		err = processor.Dump(inputFile, outputDir, pkg.DumpOptions{
			Recursive:    cfg.Recursive,
			SystemData:   systemData,
			ManifestPath: manifestPath,
			Progress: func(path string) bool {
				if ctx.Err() != nil {
					return true
				}
				visited++
				return false
			},
		})
		if pkg.IsCanceled(err) {
			fmt.Fprintf(out, "Dump interrupted after %d entries, partial output kept in: %s\n", visited, outputDir)
			return err
		}
		if err != nil {
			return fmt.Errorf("failed to process disc image: %w", err)
		}

		fmt.Fprintln(out, "Disc image processed successfully!")
		fmt.Fprintf(out, "Visited %d entries, output written to: %s\n", visited, outputDir)

		return nil
	},
}

// discSysCmd exports the apploader and boot DOL.
var discSysCmd = &cobra.Command{
	Use:   "sys [input_file] [output_directory]",
	Short: "Extract the apploader and boot DOL",
	Long: `Extract the system data of a disc image.

Writes apploader.img and boot.dol into the output directory. Both files are
attempted even if one of them fails.

For Wii, pass a decrypted partition image: an encrypted retail disc yields
meaningless system data.

Example:
  disctools disc sys game.iso ./sys/`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		processor, err := pkg.NewDiscProcessor(afero.NewOsFs(), cfg)
		if err != nil {
			return err
		}

		if err := processor.ExportSystemData(args[0], args[1]); err != nil {
			return fmt.Errorf("failed to export system data: %w", err)
		}

		fmt.Printf("System data extracted to: %s\n", args[1])
		return nil
	},
}

// discFileCmd exports one file by its path inside the disc.
var discFileCmd = &cobra.Command{
	Use:   "file [input_file] [disc_path] [output_file]",
	Short: "Extract a single file",
	Long: `Extract a single file from a disc image.

The disc path uses '/' separators and is matched case-insensitively.

Example:
  disctools disc file game.iso audio/bgm.adp ./bgm.adp`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		processor, err := pkg.NewDiscProcessor(afero.NewOsFs(), cfg)
		if err != nil {
			return err
		}

		if err := processor.ExportFile(args[0], args[1], args[2]); err != nil {
			if errors.Is(err, disc.ErrNotFound) {
				return fmt.Errorf("%s not found in %s", args[1], args[0])
			}
			return fmt.Errorf("failed to export file: %w", err)
		}

		fmt.Printf("File extracted to: %s\n", args[2])
		return nil
	},
}

// discCatCmd prints a byte range of one file.
var discCatCmd = &cobra.Command{
	Use:   "cat [input_file] [disc_path]",
	Short: "Print part of a file to standard output",
	Long: `Print the contents of a file inside a disc image.

--offset and --length accept decimal or 0x-prefixed values. A zero length
prints up to the end of the file.

Example:
  disctools disc cat --offset 0x20 --length 0x40 game.iso opening.bnr | xxd`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		offset, err := uintFlag(cmd, "offset")
		if err != nil {
			return err
		}
		length, err := uintFlag(cmd, "length")
		if err != nil {
			return err
		}

		processor, err := pkg.NewDiscProcessor(afero.NewOsFs(), cfg)
		if err != nil {
			return err
		}

		if _, err := processor.Cat(args[0], args[1], offset, length, cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		return nil
	},
}

// discInfoCmd prints the header summary as YAML.
var discInfoCmd = &cobra.Command{
	Use:   "info [input_file]",
	Short: "Show the disc header summary",
	Long: `Show the platform, header fields, boot region sizes and entry count of
an image as YAML.

Example:
  disctools disc info game.iso`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		processor, err := pkg.NewDiscProcessor(afero.NewOsFs(), cfg)
		if err != nil {
			return err
		}

		info, err := processor.Info(args[0])
		if err != nil {
			return fmt.Errorf("failed to read disc image: %w", err)
		}
		return pkg.WriteInfo(info, cmd.OutOrStdout())
	},
}

// loadConfig reads the configuration file and environment, then applies the
// command's flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("error getting config flag: %w", err)
	}

	cfg, err := config.Load(afero.NewOsFs(), path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("verbose") {
		if cfg.Verbose, err = cmd.Flags().GetBool("verbose"); err != nil {
			return nil, fmt.Errorf("error getting verbose flag: %w", err)
		}
	}
	common.SetVerboseMode(cfg.Verbose)

	if flag := cmd.Flags().Lookup("existing"); flag != nil && flag.Changed {
		cfg.Existing = flag.Value.String()
	}
	if flag := cmd.Flags().Lookup("chunk-size"); flag != nil && flag.Changed {
		if cfg.ChunkSize, err = uintFlag(cmd, "chunk-size"); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// uintFlag parses a string flag holding a decimal or 0x-prefixed number
func uintFlag(cmd *cobra.Command, name string) (uint64, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return 0, fmt.Errorf("error getting %s flag: %w", name, err)
	}
	parsed, err := strconv.ParseUint(value, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return parsed, nil
}

// init initializes the disc command with its subcommands and flags.
func init() {
	// Add the disc command to the root command
	rootCmd.AddCommand(discCmd)

	discCmd.AddCommand(discDumpCmd, discSysCmd, discFileCmd, discCatCmd, discInfoCmd)

	for _, c := range []*cobra.Command{discDumpCmd, discSysCmd, discFileCmd} {
		c.Flags().String("chunk-size", "0", "Copy buffer size in bytes (0 restores the default)")
	}

	discDumpCmd.Flags().Bool("no-recursive", false, "Only extract files in the root directory")
	discDumpCmd.Flags().Bool("sys", false, "Also extract apploader.img and boot.dol into sys/")
	discDumpCmd.Flags().String("manifest", "", "Write a YAML manifest of the extracted tree to this file")
	discDumpCmd.Flags().String("existing", "skip", "What to do with files that already exist: skip, overwrite or fail")

	discCatCmd.Flags().String("offset", "0", "Byte offset inside the file")
	discCatCmd.Flags().String("length", "0", "Number of bytes to print (0 prints to the end)")
}
