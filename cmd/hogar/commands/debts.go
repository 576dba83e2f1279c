package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/hogarhub/core/internal/ports"
)

// NewDebtsCommand creates the debts command with subcommands
func NewDebtsCommand() *cobra.Command {
	debtsCmd := &cobra.Command{
		Use:   "debts",
		Short: "Shared debt ledger",
	}

	debtsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List ledger entries and the running balance",
		Run: func(cmd *cobra.Command, args []string) {
			a := bootstrap()
			defer a.close()

			entries, err := a.debts.Fetch(context.Background())
			if err != nil {
				log.Fatalf("Failed to fetch entries: %v", err)
			}
			for _, entry := range entries {
				sign := "-"
				if entry.Type == "abono" {
					sign = "+"
				}
				fmt.Printf("%s  %s  %s$%.2f  %s\n", entry.ID, entry.Date, sign, entry.Amount, entry.Title)
			}
			balance := a.debts.Balance()
			fmt.Printf("Deudas $%.2f  Abonos $%.2f  Balance $%.2f\n",
				balance.TotalDeudas, balance.TotalAbonos, balance.Balance)
		},
	})

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record a charge or payment",
		Run: func(cmd *cobra.Command, args []string) {
			title, _ := cmd.Flags().GetString("title")
			amount, _ := cmd.Flags().GetFloat64("amount")
			entryType, _ := cmd.Flags().GetString("type")
			if title == "" || amount <= 0 {
				log.Fatal("Title and a positive amount are required")
			}

			a := bootstrap()
			defer a.close()

			entry, err := a.debts.Create(context.Background(), ports.CreateDebtEntryRequest{
				Title: title, Amount: amount, Type: entryType,
			})
			if err != nil {
				log.Fatalf("Failed to record entry: %v", err)
			}
			fmt.Printf("Recorded %s %s: $%.2f\n", entry.Type, entry.ID, entry.Amount)
		},
	}
	addCmd.Flags().String("title", "", "Entry description (required)")
	addCmd.Flags().Float64("amount", 0, "Amount (required)")
	addCmd.Flags().String("type", "deuda", "Entry type (deuda, abono)")
	debtsCmd.AddCommand(addCmd)

	return debtsCmd
}
