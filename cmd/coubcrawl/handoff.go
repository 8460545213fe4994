package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"coubcrawl/internal/handoff"
	"coubcrawl/pkg/crawler"
	"coubcrawl/pkg/output"
	"coubcrawl/pkg/ui"
)

// handoffCmd represents the handoff command
var handoffCmd = &cobra.Command{
	Use:   "handoff [category][,<category>...]",
	Short: "Print downloader commands for crawled categories",
	Long: `Print the command lines that feed crawled URL lists to the external
downloader. With no categories, every category in the info directory is
used. Categories without a URL list are reported and skipped.

Nothing is executed; pipe the output into a shell to run it.`,
	RunE: runHandoff,
}

func init() {
	rootCmd.AddCommand(handoffCmd)
	handoffCmd.Flags().StringVar(&infoDir, "info-dir", "", "directory holding crawl output (default Coubs-info)")
}

func runHandoff(cmd *cobra.Command, args []string) error {
	flags := make(map[string]interface{})
	if cmd.Flags().Changed("info-dir") {
		flags["info-dir"] = infoDir
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return printError("Failed to load configuration", err)
	}

	var categories []string
	for _, c := range crawler.ParseCategories(args...) {
		categories = append(categories, c.String())
	}

	builder := handoff.New(handoff.SettingsFromConfig(cfg), output.NewStore(cfg.Output.InfoDir))
	plan, err := builder.Build(categories)
	if err != nil {
		return printError("Failed to build downloader commands", err)
	}

	for _, skipped := range plan.Skipped {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.Yellow(fmt.Sprintf("No URL list for category '%s' found, skipping", skipped)))
	}
	for _, c := range plan.Commands {
		label := c.Category
		if c.Reposts {
			label += " reposts"
		}
		fmt.Printf("# %s: %d links\n", label, c.URLs)
		fmt.Println(c.String())
	}
	return nil
}
