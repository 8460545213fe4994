package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"coubcrawl/pkg/history"
	"coubcrawl/pkg/ui"
)

var historyLimit int

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history [category]",
	Short: "Show past crawl runs",
	Long: `Show the crawl history, newest first.

The history is an audit log only. Whether a category is crawled again is
decided by the presence of its URL list, never by this log.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show (0 = all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return printError("Failed to load configuration", err)
	}

	path, err := cfg.HistoryPath()
	if err != nil {
		return printError("Failed to locate crawl history", err)
	}

	db, err := history.Open(path)
	if err != nil {
		return printError("Failed to open crawl history", err)
	}
	defer db.Close()

	category := ""
	if len(args) == 1 {
		category = args[0]
	}

	entries, err := db.List(context.Background(), category, historyLimit)
	if err != nil {
		return printError("Failed to read crawl history", err)
	}

	if len(entries) == 0 {
		ui.PrintWarning("No crawl history yet")
		return nil
	}

	ui.PrintInfo("History", path)
	for _, e := range entries {
		line := fmt.Sprintf("#%-4d %s  %-24s %-8s", e.RunID, e.StartedAt.Local().Format("2006-01-02 15:04"), e.Category, e.Outcome)
		if e.Outcome == "skipped" {
			line += ui.Dim(" " + e.Reason)
		} else {
			line += fmt.Sprintf(" pages=%d items=%d reposts=%d", e.Pages, e.Emitted, e.Reposts)
			if e.Reason != "" {
				line += ui.Dim(" " + e.Reason)
			}
		}
		fmt.Println(line)
	}
	return nil
}
