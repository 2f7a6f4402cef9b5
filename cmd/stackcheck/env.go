package stackcheck

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/losb/stackcheck/internal/environment"
	"github.com/spf13/cobra"
)

var (
	envTemplate bool
	envBundled  bool
)

var envCmd = &cobra.Command{
	Use:   "env [path]",
	Short: "List the environment variables a deployment must supply",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		l, err := loadManifest(cmd.Context(), args, envBundled)
		if err == nil {
			err = runEnv(cmd.OutOrStdout(), l, envTemplate)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Environment extraction failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func runEnv(w io.Writer, l *loaded, template bool) error {
	if l.requirements == nil {
		return l.result.DocErr
	}

	if template {
		out, err := environment.Template(l.requirements)
		if err != nil {
			return fmt.Errorf("failed to render template: %w", err)
		}
		fmt.Fprintln(w, out)
		return nil
	}

	reqs := l.requirements
	if len(reqs.Items) == 0 {
		fmt.Fprintln(w, "No environment variables required")
		return nil
	}

	for _, item := range reqs.Items {
		var tags []string
		tags = append(tags, item.Type.String())
		if item.Sensitive {
			tags = append(tags, color.MagentaString("sensitive"))
		}
		if item.Optional {
			tags = append(tags, "optional")
		}
		if item.Default != "" {
			tags = append(tags, "default="+item.Default)
		}

		status := color.GreenString("documented")
		if !item.Documented {
			if item.Optional {
				status = color.YellowString("undocumented")
			} else {
				status = color.RedString("undocumented")
			}
		}
		if item.Provided {
			status += ", provided"
		}

		fmt.Fprintf(w, "%s (%s) %s\n", item.Name, strings.Join(tags, ", "), status)
		fmt.Fprintf(w, "    Sources: %s\n", strings.Join(item.Sources, ", "))
	}

	if !reqs.ExampleFound {
		fmt.Fprintln(w)
		fmt.Fprintln(w, color.YellowString("%s not found; run with --template to generate it", reqs.Example))
	}
	return nil
}

func init() {
	envCmd.Flags().BoolVar(&envTemplate, "template", false, "print a dotenv template for the env example")
	envCmd.Flags().BoolVar(&envBundled, "bundled", false, "use the manifest bundled with this tool")
	rootCmd.AddCommand(envCmd)
}
