package stackcheck

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/losb/stackcheck/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfg     *config.Config
	log     = logrus.StandardLogger()
)

var rootCmd = &cobra.Command{
	Use:   "stackcheck",
	Short: "Check a docker-compose deployment manifest before it ships",
	Long: `Stackcheck loads a docker-compose manifest and checks it the way a
deploy would:
1. Parse - the file is valid YAML and a loadable compose project
2. References - every network, volume and dependency a service uses is declared
3. Ports - published ports are well-formed host:container pairs
4. Environment - required variables are documented in .env.example

Without a path it checks the manifest in the current directory, or the
bundled deploy/docker-compose.yml when there is none.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		log.SetLevel(cfg.Level())
		color.NoColor = color.NoColor || cfg.NoColor
		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.stackcheck.yaml)")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.Bool("no-color", false, "disable colored output")

	config.SetDefaults(viper.GetViper())
	cobra.CheckErr(viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level")))
	cobra.CheckErr(viper.BindPFlag(config.KeyNoColor, flags.Lookup("no-color")))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".stackcheck")
	}

	if err := viper.ReadInConfig(); err == nil {
		log.Debugf("using config file: %s", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Failed to read config file %s: %v\n", cfgFile, err)
		os.Exit(1)
	}
}
