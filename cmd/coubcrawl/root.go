package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"coubcrawl/pkg/config"
	"coubcrawl/pkg/logger"
	"coubcrawl/pkg/ui"
)

var (
	// Version information
	version   = "0.7.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noColor    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "coubcrawl [categories]",
	Short: "Crawl Coub timelines into URL lists and metadata",
	Long: `coubcrawl walks Coub timelines and writes, per category, a URL list
ready for a downloader plus human readable and raw metadata.

A category is one of:
  - liked       items you liked (needs an access token)
  - bookmarks   items you bookmarked (needs an access token)
  - <channel>   any channel permalink (not its display name)

Several categories can be given at once, separated by commas:
  coubcrawl liked,bookmarks,channelone,just.for.kicks`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.NoColor = noColor
		logger.NoColor = noColor
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ./coubcrawl.yaml or $XDG_CONFIG_HOME/coubcrawl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Bare "coubcrawl <categories>" behaves like "coubcrawl crawl <categories>"
	rootCmd.Args = cobra.ArbitraryArgs
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 && !isKnownCommand(args[0]) {
			return runCrawl(cmd, args)
		}
		return cmd.Help()
	}
	addCrawlFlags(rootCmd)

	rootCmd.SetVersionTemplate(`coubcrawl {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

func isKnownCommand(arg string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == arg || cmd.HasAlias(arg) {
			return true
		}
	}
	return false
}

// loadConfig resolves configuration from file, environment and any
// explicitly set flags
func loadConfig(flags map[string]interface{}) (*config.Config, error) {
	if flags == nil {
		flags = make(map[string]interface{})
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	return config.Load(configFile, flags)
}

// setupLogger initializes the global logger from cfg
func setupLogger(cfg *config.Config) (logger.Logger, error) {
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.GetLogger(), nil
}

// printError reports a failure on the terminal and hands it back to cobra
func printError(msg string, err error) error {
	ui.PrintError(msg, err.Error())
	return err
}
