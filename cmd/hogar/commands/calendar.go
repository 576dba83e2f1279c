package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/hogarhub/core/internal/ports"
)

// NewCalendarCommand creates the calendar command with subcommands
func NewCalendarCommand() *cobra.Command {
	calendarCmd := &cobra.Command{
		Use:   "calendar",
		Short: "Family calendar and reminders",
	}

	calendarCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List upcoming events",
		Run: func(cmd *cobra.Command, args []string) {
			a := bootstrap()
			defer a.close()

			events, err := a.calendar.Fetch(context.Background())
			if err != nil {
				log.Fatalf("Failed to fetch events: %v", err)
			}
			if len(events) == 0 {
				fmt.Println("No events")
				return
			}
			for _, event := range events {
				line := fmt.Sprintf("%s  %s %s  %s", event.ID, event.Date, event.StartTime, event.Title)
				if event.NotifyBeforeMinutes != nil {
					line += fmt.Sprintf("  (aviso %d min antes)", *event.NotifyBeforeMinutes)
				}
				fmt.Println(line)
			}
		},
	})

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create an event, optionally with a reminder",
		Run: func(cmd *cobra.Command, args []string) {
			title, _ := cmd.Flags().GetString("title")
			date, _ := cmd.Flags().GetString("date")
			startTime, _ := cmd.Flags().GetString("time")
			lead, _ := cmd.Flags().GetInt("notify-before")
			if title == "" || date == "" {
				log.Fatal("Title and date are required")
			}

			req := ports.CreateEventRequest{Title: title, Date: date, StartTime: startTime}
			if cmd.Flags().Changed("notify-before") {
				req.NotifyBeforeMinutes = &lead
			}

			a := bootstrap()
			defer a.close()

			event, err := a.calendar.Create(context.Background(), req)
			if err != nil {
				log.Fatalf("Failed to create event: %v", err)
			}
			fmt.Printf("Created event %s: %s %s\n", event.ID, event.Date, event.Title)
		},
	}
	addCmd.Flags().String("title", "", "Event title (required)")
	addCmd.Flags().String("date", "", "Event date YYYY-MM-DD (required)")
	addCmd.Flags().String("time", "", "Start time HH:mm")
	addCmd.Flags().Int("notify-before", 0, "Reminder lead in minutes, 0 notifies at start")
	calendarCmd.AddCommand(addCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an event and drop its reminder",
		Run: func(cmd *cobra.Command, args []string) {
			eventID, _ := cmd.Flags().GetString("id")
			if eventID == "" {
				log.Fatal("Event id is required")
			}

			a := bootstrap()
			defer a.close()
			if _, err := a.calendar.Fetch(context.Background()); err != nil {
				log.Fatalf("Failed to fetch events: %v", err)
			}

			if err := a.calendar.Delete(context.Background(), eventID); err != nil {
				log.Fatalf("Failed to delete event: %v", err)
			}
			fmt.Println("Event deleted")
		},
	}
	deleteCmd.Flags().String("id", "", "Event id (required)")
	calendarCmd.AddCommand(deleteCmd)

	return calendarCmd
}
