package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/synk/client/cmd/synk/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "synk",
		Short: "Synk shared-planning client",
		Long:  `Synk is a client for the shared couple-planning service: it signs in, mirrors the couple's tasks, milestones, collections, inbox and memories locally, and keeps the mirror current over a realtime channel.`,
	}

	rootCmd.AddCommand(commands.NewLoginCommand())
	rootCmd.AddCommand(commands.NewSignupCommand())
	rootCmd.AddCommand(commands.NewLogoutCommand())
	rootCmd.AddCommand(commands.NewWhoamiCommand())
	rootCmd.AddCommand(commands.NewTasksCommand())
	rootCmd.AddCommand(commands.NewMilestonesCommand())
	rootCmd.AddCommand(commands.NewSuggestionsCommand())
	rootCmd.AddCommand(commands.NewCollectionsCommand())
	rootCmd.AddCommand(commands.NewMemoriesCommand())
	rootCmd.AddCommand(commands.NewInboxCommand())
	rootCmd.AddCommand(commands.NewCoupleCommand())
	rootCmd.AddCommand(commands.NewDailyCommand())
	rootCmd.AddCommand(commands.NewAccountCommand())
	rootCmd.AddCommand(commands.NewWatchCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
