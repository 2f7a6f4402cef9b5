package stackcheck

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var orderBundled bool

var orderCmd = &cobra.Command{
	Use:   "order [path]",
	Short: "Print the order services start in",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		l, err := loadManifest(cmd.Context(), args, orderBundled)
		if err == nil {
			err = runOrder(cmd.OutOrStdout(), l)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Order failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func runOrder(w io.Writer, l *loaded) error {
	if err := l.requireProject(); err != nil {
		return err
	}

	order, err := l.result.Project.StartOrder()
	if err != nil {
		return err
	}
	for i, name := range order {
		s, _ := l.result.Project.Service(name)
		if len(s.DependsOn) > 0 {
			fmt.Fprintf(w, "%d. %s (after %v)\n", i+1, name, s.DependsOn)
			continue
		}
		fmt.Fprintf(w, "%d. %s\n", i+1, name)
	}
	return nil
}

func init() {
	orderCmd.Flags().BoolVar(&orderBundled, "bundled", false, "use the manifest bundled with this tool")
	rootCmd.AddCommand(orderCmd)
}
