package stackcheck

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/losb/stackcheck/internal/dbprobe"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var probeService string

var probeCmd = &cobra.Command{
	Use:   "probe [path]",
	Short: "Wait until the manifest's database accepts connections",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		l, err := loadManifest(cmd.Context(), args, false)
		if err == nil {
			prober := dbprobe.NewProber(log)
			prober.Timeout = cfg.Probe.Timeout
			prober.Interval = cfg.Probe.Interval
			err = runProbe(cmd.Context(), cmd.OutOrStdout(), l, probeService, prober)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Probe failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func runProbe(ctx context.Context, w io.Writer, l *loaded, service string, prober *dbprobe.Prober) error {
	if err := l.requireProject(); err != nil {
		return err
	}

	project := l.result.Project
	env := serviceEnv(l, service)

	target, err := dbprobe.TargetFor(project, service, env)
	if err != nil {
		return err
	}
	target.SSLMode = cfg.Probe.SSLMode

	fmt.Fprintf(w, "Waiting for %s\n", target)
	attempts, err := prober.Wait(ctx, target)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, color.GreenString("%s is ready after %d attempt(s)", target, attempts))
	return nil
}

// serviceEnv merges the service's env files with the process environment,
// the process environment winning.
func serviceEnv(l *loaded, service string) map[string]string {
	env := make(map[string]string)
	if s, ok := l.result.Project.Service(service); ok {
		dir := l.fsys.Dir(l.result.Path)
		for _, f := range s.EnvFiles {
			if !l.fsys.IsAbs(f) {
				f = l.fsys.Join(dir, f)
			}
			content, err := l.fsys.ReadFile(f)
			if err != nil {
				log.WithError(err).WithField("file", f).Debug("skipping env file")
				continue
			}
			values, err := godotenv.Unmarshal(string(content))
			if err != nil {
				log.WithError(err).WithField("file", f).Warn("ignoring unparseable env file")
				continue
			}
			for k, v := range values {
				env[k] = v
			}
		}
	}

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, "POSTGRES_") {
			env[k] = v
		}
	}
	return env
}

func init() {
	probeCmd.Flags().StringVar(&probeService, "service", "db", "database service to probe")
	probeCmd.Flags().Duration("timeout", 0, "give up after this long (default from config, 30s)")
	probeCmd.Flags().Duration("interval", 0, "initial delay between attempts")
	cobra.CheckErr(viper.BindPFlag("probe.timeout", probeCmd.Flags().Lookup("timeout")))
	cobra.CheckErr(viper.BindPFlag("probe.interval", probeCmd.Flags().Lookup("interval")))
	rootCmd.AddCommand(probeCmd)
}
