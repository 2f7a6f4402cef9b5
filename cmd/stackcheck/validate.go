package stackcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/losb/stackcheck/internal/validate"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errValidationFailed = errors.New("validation failed")

var validateBundled bool

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Check a compose manifest for structural problems",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		l, err := loadManifest(cmd.Context(), args, validateBundled)
		if err == nil {
			err = runValidate(cmd.Context(), cmd.OutOrStdout(), l, cfg.Strict)
		}
		if err != nil {
			if !errors.Is(err, errValidationFailed) {
				fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			}
			os.Exit(1)
		}
	},
}

// runValidate prints the report for l and returns errValidationFailed when
// the manifest should be rejected.
func runValidate(ctx context.Context, w io.Writer, l *loaded, strict bool) error {
	report, err := validate.New().Run(ctx, &validate.Input{
		FS:           l.fsys,
		Result:       l.result,
		Requirements: l.requirements,
	})
	if err != nil {
		return err
	}

	printReport(w, report)

	if report.Failed(strict) {
		return errValidationFailed
	}
	return nil
}

func severityColor(sev validate.Severity) *color.Color {
	switch sev {
	case validate.SeverityError:
		return color.New(color.FgRed, color.Bold)
	case validate.SeverityWarning:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}

func printReport(w io.Writer, report *validate.Report) {
	for _, d := range report.Diagnostics {
		location := report.Source
		if d.Line > 0 {
			location = fmt.Sprintf("%s:%d", report.Source, d.Line)
		}
		fmt.Fprintf(w, "%s: %s [%s]", location, severityColor(d.Severity).Sprint(d.Severity), d.Rule)
		if d.Path != "" {
			fmt.Fprintf(w, " %s:", d.Path)
		}
		fmt.Fprintf(w, " %s\n", d.Message)
	}

	errs := report.Count(validate.SeverityError)
	warns := report.Count(validate.SeverityWarning)
	summary := fmt.Sprintf("%s: %d error(s), %d warning(s)", report.Source, errs, warns)
	switch {
	case errs > 0:
		fmt.Fprintln(w, color.RedString("%s", summary))
	case warns > 0:
		fmt.Fprintln(w, color.YellowString("%s", summary))
	default:
		fmt.Fprintln(w, color.GreenString("%s, ok", summary))
	}
}

func init() {
	validateCmd.Flags().BoolVar(&validateBundled, "bundled", false, "validate the manifest bundled with this tool")
	validateCmd.Flags().Bool("strict", false, "treat warnings as errors")
	cobra.CheckErr(viper.BindPFlag("strict", validateCmd.Flags().Lookup("strict")))
	rootCmd.AddCommand(validateCmd)
}
