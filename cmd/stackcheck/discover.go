package stackcheck

import (
	"fmt"
	"io"
	"os"

	"github.com/losb/stackcheck/internal/discovery"
	"github.com/losb/stackcheck/internal/filesystems"
	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover [source-path]",
	Short: "List the deployment configuration files in a tree",
	Long: `Discover walks the source tree and lists compose files, env files and
Dockerfiles without loading them. Use it to find the manifest to validate.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sourcePath := "."
		if len(args) > 0 {
			sourcePath = args[0]
		}

		filesystem, root, err := filesystems.NewFileSystem(sourcePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Discovery failed: failed to create filesystem: %v\n", err)
			os.Exit(1)
		}
		if err := runDiscover(cmd.OutOrStdout(), filesystem, root); err != nil {
			fmt.Fprintf(os.Stderr, "Discovery failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func runDiscover(w io.Writer, filesystem filesystems.FileSystem, root string) error {
	scanner := discovery.NewScannerWithDetectors(discovery.DefaultDetectors())
	configs, err := scanner.DiscoverConfigs(filesystem, root)
	if err != nil {
		return err
	}

	if len(configs) == 0 {
		fmt.Fprintln(w, "No configuration files found")
		return nil
	}

	fmt.Fprintf(w, "Discovered %d configuration files:\n", len(configs))
	for _, c := range configs {
		fmt.Fprintf(w, "  - %s: %s\n", c.Type, c.Path)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}
