package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/hogarhub/core/cmd/hogar/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hogar",
		Short: "Hogar household organizer",
		Long:  `Hogar is the household organizer client: shared task categories, shopping list, calendar with reminders, notes and the debt ledger, all synced against the family server.`,
	}

	rootCmd.AddCommand(commands.NewTasksCommand())
	rootCmd.AddCommand(commands.NewSuperCommand())
	rootCmd.AddCommand(commands.NewCalendarCommand())
	rootCmd.AddCommand(commands.NewNotesCommand())
	rootCmd.AddCommand(commands.NewDebtsCommand())
	rootCmd.AddCommand(commands.NewChatCommand())
	rootCmd.AddCommand(commands.NewMockAPICommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
