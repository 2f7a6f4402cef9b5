package stackcheck

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/losb/stackcheck/internal/export"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var inspectBundled bool

var inspectCmd = &cobra.Command{
	Use:   "inspect [path]",
	Short: "Print the loaded service topology",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		l, err := loadManifest(cmd.Context(), args, inspectBundled)
		if err == nil {
			err = runInspect(cmd.OutOrStdout(), l, cfg.Format)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Inspect failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func runInspect(w io.Writer, l *loaded, format string) error {
	exporter, err := export.ForFormat(format)
	if err != nil {
		return err
	}
	if err := l.requireProject(); err != nil {
		return err
	}

	output, err := exporter.Export(l.result.Project)
	if err != nil {
		return fmt.Errorf("%s export failed: %w", exporter.Name(), err)
	}
	_, err = w.Write(output)
	return err
}

func init() {
	inspectCmd.Flags().String("format", "json", "output format ("+strings.Join(export.Formats(), ", ")+")")
	inspectCmd.Flags().BoolVar(&inspectBundled, "bundled", false, "inspect the manifest bundled with this tool")
	cobra.CheckErr(viper.BindPFlag("format", inspectCmd.Flags().Lookup("format")))
	rootCmd.AddCommand(inspectCmd)
}
