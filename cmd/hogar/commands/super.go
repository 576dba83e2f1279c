package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/hogarhub/core/internal/ports"
)

// NewSuperCommand creates the supermarket command with subcommands
func NewSuperCommand() *cobra.Command {
	superCmd := &cobra.Command{
		Use:   "super",
		Short: "Shared shopping list",
	}

	superCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List shopping items, pending first",
		Run: func(cmd *cobra.Command, args []string) {
			a := bootstrap()
			defer a.close()

			items, err := a.super.Fetch(context.Background())
			if err != nil {
				log.Fatalf("Failed to fetch items: %v", err)
			}
			for _, item := range items {
				mark := " "
				if item.Checked {
					mark = "x"
				}
				fmt.Printf("[%s] %s  %g %s  %s\n", mark, item.ID, item.Quantity, item.Unit, item.Name)
			}
			stats := a.super.Stats()
			fmt.Printf("%d items, %d pending, estimated $%.2f\n", stats.Total, stats.Pending, stats.EstimatedTotal)
		},
	})

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item to the list",
		Run: func(cmd *cobra.Command, args []string) {
			name, _ := cmd.Flags().GetString("name")
			quantity, _ := cmd.Flags().GetFloat64("quantity")
			unit, _ := cmd.Flags().GetString("unit")
			priority, _ := cmd.Flags().GetInt("priority")
			if name == "" {
				log.Fatal("Name is required")
			}

			a := bootstrap()
			defer a.close()

			item, err := a.super.Create(context.Background(), ports.CreateSupermarketItemRequest{
				Name: name, Quantity: quantity, Unit: unit, Priority: priority,
			})
			if err != nil {
				log.Fatalf("Failed to add item: %v", err)
			}
			fmt.Printf("Created item %s: %s\n", item.ID, item.Name)
		},
	}
	addCmd.Flags().String("name", "", "Item name (required)")
	addCmd.Flags().Float64("quantity", 1, "Quantity")
	addCmd.Flags().String("unit", "pz", "Unit")
	addCmd.Flags().Int("priority", 2, "Priority 1-3, 1 is highest")
	superCmd.AddCommand(addCmd)

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Toggle an item's checked state",
		Run: func(cmd *cobra.Command, args []string) {
			itemID, _ := cmd.Flags().GetString("id")
			if itemID == "" {
				log.Fatal("Item id is required")
			}

			a := bootstrap()
			defer a.close()
			if _, err := a.super.Fetch(context.Background()); err != nil {
				log.Fatalf("Failed to fetch items: %v", err)
			}

			if err := a.super.Toggle(context.Background(), itemID); err != nil {
				log.Fatalf("Failed to toggle item: %v", err)
			}
			fmt.Println("Item updated")
		},
	}
	checkCmd.Flags().String("id", "", "Item id (required)")
	superCmd.AddCommand(checkCmd)

	return superCmd
}
