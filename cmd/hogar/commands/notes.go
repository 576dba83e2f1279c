package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/hogarhub/core/internal/ports"
)

// NewNotesCommand creates the notes command with subcommands
func NewNotesCommand() *cobra.Command {
	notesCmd := &cobra.Command{
		Use:   "notes",
		Short: "Household notes",
	}

	notesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List notes, manzana notes first",
		Run: func(cmd *cobra.Command, args []string) {
			a := bootstrap()
			defer a.close()

			notes, err := a.notes.Fetch(context.Background())
			if err != nil {
				log.Fatalf("Failed to fetch notes: %v", err)
			}
			if len(notes) == 0 {
				fmt.Println("No notes")
				return
			}
			for _, note := range notes {
				pin := "  "
				if note.IsManzana {
					pin = "* "
				}
				fmt.Printf("%s%s  %s\n", pin, note.ID, note.Title)
			}
		},
	})

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		Run: func(cmd *cobra.Command, args []string) {
			title, _ := cmd.Flags().GetString("title")
			content, _ := cmd.Flags().GetString("content")
			manzana, _ := cmd.Flags().GetBool("manzana")
			if title == "" {
				log.Fatal("Title is required")
			}

			a := bootstrap()
			defer a.close()

			note, err := a.notes.Create(context.Background(), ports.CreateNoteRequest{
				Title: title, Content: content, IsManzana: manzana,
			})
			if err != nil {
				log.Fatalf("Failed to create note: %v", err)
			}
			fmt.Printf("Created note %s: %s\n", note.ID, note.Title)
		},
	}
	addCmd.Flags().String("title", "", "Note title (required)")
	addCmd.Flags().String("content", "", "Note content")
	addCmd.Flags().Bool("manzana", false, "Pin as manzana note")
	notesCmd.AddCommand(addCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a note",
		Run: func(cmd *cobra.Command, args []string) {
			noteID, _ := cmd.Flags().GetString("id")
			if noteID == "" {
				log.Fatal("Note id is required")
			}

			a := bootstrap()
			defer a.close()
			if _, err := a.notes.Fetch(context.Background()); err != nil {
				log.Fatalf("Failed to fetch notes: %v", err)
			}

			if err := a.notes.Delete(context.Background(), noteID); err != nil {
				log.Fatalf("Failed to delete note: %v", err)
			}
			fmt.Println("Note deleted")
		},
	}
	deleteCmd.Flags().String("id", "", "Note id (required)")
	notesCmd.AddCommand(deleteCmd)

	return notesCmd
}
