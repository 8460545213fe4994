package main

import (
	"os"

	"github.com/spf13/cobra"

	"coubcrawl/pkg/auth"
)

// tokenHelpCmd explains how to obtain an access token
var tokenHelpCmd = &cobra.Command{
	Use:   "token-help",
	Short: "Explain how to get an access token",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		auth.ShowTokenGuide(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(tokenHelpCmd)
}
