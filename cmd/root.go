// Package cmd provides command-line interface commands for the phishq tool.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/btraven00/phishq/internal/checker"
	"github.com/btraven00/phishq/internal/config"
	"github.com/btraven00/phishq/internal/detector"
)

var (
	cfgFile string
	quiet   bool
	verbose bool
	output  string

	appConfig config.Config
	logger    *logrus.Logger
	configErr error
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "phishq",
	Short: "A CLI tool for scoring URLs and email links for phishing risk",
	Long: `Phishq assigns a heuristic risk score to URLs to flag likely phishing
links. It runs a fixed set of independent checks (lexical patterns, host
analysis, typosquatting, transport, URL structure), sums their points into a
capped 0-100 score and derives a risk level and recommendations.

URLs can be checked one by one, in batches, extracted from text or HTML, or
pulled from recent email (Gmail, a directory of .eml files, or demo data).`,
	SilenceUsage:      true,
	PersistentPreRunE: loadRuntime,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Cancelling ctx interrupts batch scoring, mail scans and the server.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.phishq.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "quiet output (suppress informational messages)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show detailed findings")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "human", "output format (human, json, csv)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().Int("workers", 0, "number of parallel workers (default: number of CPUs)")

	cobra.CheckErr(viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")))
	cobra.CheckErr(viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format")))
	cobra.CheckErr(viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers")))
}

// initConfig reads in .env, the config file and ENV variables if set.
func initConfig() {
	// a missing .env file is normal
	_ = godotenv.Load()

	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".phishq" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".phishq")
	}

	config.BindEnv(viper.GetViper())

	configErr = nil

	if err := viper.ReadInConfig(); err == nil {
		if !quiet {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else if cfgFile != "" {
		configErr = fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
	}
}

// loadRuntime decodes the configuration and builds the logger before any
// command runs.
func loadRuntime(cmd *cobra.Command, args []string) error {
	if configErr != nil {
		return configErr
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	l, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}

	if quiet && l.GetLevel() > logrus.WarnLevel {
		l.SetLevel(logrus.WarnLevel)
	}

	appConfig = cfg
	logger = l

	return nil
}

func newDetector() *detector.Detector {
	return detector.New(appConfig.Detector, detector.WithLogger(logger))
}

func newChecker(cmd *cobra.Command, screen bool) *checker.Checker {
	return checker.New(checker.Config{
		Out:          cmd.OutOrStdout(),
		OutputFormat: output,
		Workers:      appConfig.Workers,
		Verbose:      verbose,
		Screen:       screen,
	}, newDetector(), logger)
}
