package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"coubcrawl/pkg/auth"
	"coubcrawl/pkg/config"
	"coubcrawl/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage coubcrawl configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (COUBCRAWL_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created in the current directory as 'coubcrawl.yaml' unless a
different path is given with the --config flag.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging every source.

The access token is masked.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

const exampleConfig = `# coubcrawl configuration file
#
# Every option can also be set through COUBCRAWL_* environment variables,
# for example COUBCRAWL_ACCESS_TOKEN or COUBCRAWL_WAIT_TIME.

coub:
  base_url: "https://coub.com"
  api_url: "https://coub.com/api/v2"
  # remember_token cookie value, needed for liked and bookmarks.
  # Run 'coubcrawl token-help' to see how to get it.
  access_token: ""
  # Leave empty to use the built-in pool
  user_agents: []

crawl:
  # Seconds to wait before every request
  wait_time: 2.5
  # Items per page, 1-25
  page_limit: 25
  download_segments: false
  nsfw_only: false
  # Timeline order: date, newest, oldest, likes_count, views_count
  order_by: "date"
  # Stop each category after this many pages, 0 = no cap
  max_pages: 0
  # Already crawled categories: ask, always or never
  recrawl: "ask"
  # Ask channels for their item count first to size the walk
  probe_channel_totals: false

rate_limit:
  # Cap on top of wait_time, 0 = off
  requests_per_minute: 0

http:
  # Request timeout, 0 = no timeout
  timeout: 0s

output:
  info_dir: "Coubs-info"

# Used by 'coubcrawl handoff' to build downloader commands
download:
  # highest, medium or low
  quality: "highest"
  # -1 keeps the downloader default
  loops: -1
  keep_audio_video: false
  output_path: ""
  data_dir: "Coubs"
  archive_file: "downloaded.txt"
  command: ["python", "-X", "utf8", "coub_v2.py"]

history:
  enabled: true
  # Empty uses $XDG_DATA_HOME/coubcrawl/history.db
  path: ""

logging:
  # debug, info, warn, error
  level: "info"
  # Optional log file, written as JSON
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = config.AppName + ".yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		return fmt.Errorf("%s already exists", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		return printError("Failed to create configuration file", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration file and add your access token if you crawl liked or bookmarks")
	fmt.Println("2. Run 'coubcrawl config validate' to check the configuration")
	fmt.Println("3. Start crawling with 'coubcrawl crawl <categories>'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return printError("Failed to load configuration", err)
	}

	display := *cfg
	if display.Coub.AccessToken != "" {
		display.Coub.AccessToken = auth.Mask(auth.Normalize(display.Coub.AccessToken))
	}

	data, err := yaml.Marshal(&display)
	if err != nil {
		return printError("Failed to format configuration", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (COUBCRAWL_*)")
	if path := resolvedConfigFile(); path != "" {
		fmt.Printf("3. Configuration file: %s\n", path)
	} else {
		fmt.Println("3. Configuration file: (none found)")
	}
	fmt.Println("4. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := resolvedConfigFile()
	if path == "" {
		return printError("No configuration file found", fmt.Errorf("specify a file with --config"))
	}

	ui.PrintInfo("Validating configuration", path)

	cfg, err := loadConfig(nil)
	if err != nil {
		return printError("Configuration validation failed", err)
	}

	var warnings []string
	if cfg.Coub.AccessToken == "" {
		warnings = append(warnings, "no access token configured; liked and bookmarks will prompt for one")
	}
	if len(cfg.Download.Command) == 0 {
		warnings = append(warnings, "download.command is empty; handoff will not work")
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Info directory: %s\n", cfg.Output.InfoDir)
	fmt.Printf("  Wait time: %gs\n", cfg.Crawl.WaitTime)
	fmt.Printf("  Page limit: %d\n", cfg.Crawl.PageLimit)
	fmt.Printf("  Recrawl: %s\n", cfg.Crawl.Recrawl)
	fmt.Printf("  Rate limit: %d requests/minute\n", cfg.RateLimit.RequestsPerMinute)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
	return nil
}

func resolvedConfigFile() string {
	if configFile != "" {
		return configFile
	}
	return config.FindConfigFile()
}
