package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/convoly/chat-api/cmd/configure/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "chat-api-configure",
		Short: "Configuration tool for the chat API gateway",
		Long:  "CLI tool for inspecting gateway configuration, minting development tokens, and probing dependencies",
	}

	rootCmd.AddCommand(commands.NewConfigCmd())
	rootCmd.AddCommand(commands.NewTokenCmd())
	rootCmd.AddCommand(commands.NewJWKSCmd())
	rootCmd.AddCommand(commands.NewStatsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
