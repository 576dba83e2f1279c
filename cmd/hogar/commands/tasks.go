package commands

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hogarhub/core/internal/domain/entities"
	"github.com/hogarhub/core/internal/ports"
)

// NewTasksCommand creates the tasks command with subcommands
func NewTasksCommand() *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Shared task categories",
		Long:  "List and manage the household task categories and their pendientes",
	}

	tasksCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all categories with their tasks",
		Run: func(cmd *cobra.Command, args []string) {
			a := bootstrap()
			defer a.close()

			categories, err := a.tasks.Fetch(context.Background())
			if err != nil {
				log.Fatalf("Failed to fetch categories: %v", err)
			}
			if a.tasks.UsingFallback() {
				fmt.Println("(sin conexion: mostrando datos de ejemplo)")
			}
			printCategories(categories)
		},
	})

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task to a category",
		Run: func(cmd *cobra.Command, args []string) {
			categoryID, _ := cmd.Flags().GetString("category")
			title, _ := cmd.Flags().GetString("title")
			if categoryID == "" || title == "" {
				log.Fatal("Category and title are required")
			}

			a := bootstrap()
			defer a.close()
			if _, err := a.tasks.Fetch(context.Background()); err != nil {
				log.Fatalf("Failed to fetch categories: %v", err)
			}

			task, err := a.tasks.AddTask(context.Background(), categoryID, ports.CreateTaskRequest{Title: title})
			if err != nil {
				log.Fatalf("Failed to add task: %v", err)
			}
			fmt.Printf("Created task %s: %s\n", task.ID, task.Title)
		},
	}
	addCmd.Flags().String("category", "", "Category id (required)")
	addCmd.Flags().String("title", "", "Task title (required)")
	tasksCmd.AddCommand(addCmd)

	toggleCmd := &cobra.Command{
		Use:   "toggle",
		Short: "Toggle a task between pendiente and completada",
		Run: func(cmd *cobra.Command, args []string) {
			categoryID, _ := cmd.Flags().GetString("category")
			taskID, _ := cmd.Flags().GetString("task")
			if categoryID == "" || taskID == "" {
				log.Fatal("Category and task are required")
			}

			a := bootstrap()
			defer a.close()
			if _, err := a.tasks.Fetch(context.Background()); err != nil {
				log.Fatalf("Failed to fetch categories: %v", err)
			}

			if err := a.tasks.ToggleTaskStatus(context.Background(), categoryID, taskID); err != nil {
				log.Fatalf("Failed to toggle task: %v", err)
			}
			fmt.Println("Task updated")
		},
	}
	toggleCmd.Flags().String("category", "", "Category id (required)")
	toggleCmd.Flags().String("task", "", "Task id (required)")
	tasksCmd.AddCommand(toggleCmd)

	reorderCmd := &cobra.Command{
		Use:   "reorder",
		Short: "Persist a new task order within a category",
		Run: func(cmd *cobra.Command, args []string) {
			categoryID, _ := cmd.Flags().GetString("category")
			order, _ := cmd.Flags().GetString("order")
			if categoryID == "" || order == "" {
				log.Fatal("Category and order are required")
			}

			a := bootstrap()
			defer a.close()
			if _, err := a.tasks.Fetch(context.Background()); err != nil {
				log.Fatalf("Failed to fetch categories: %v", err)
			}

			ids := strings.Split(order, ",")
			if err := a.tasks.ReorderTasks(context.Background(), categoryID, ids); err != nil {
				log.Fatalf("Failed to persist order: %v", err)
			}
			fmt.Println("Order saved")
		},
	}
	reorderCmd.Flags().String("category", "", "Category id (required)")
	reorderCmd.Flags().String("order", "", "Comma-separated task ids, first to last (required)")
	tasksCmd.AddCommand(reorderCmd)

	return tasksCmd
}

func printCategories(categories []entities.Category) {
	if len(categories) == 0 {
		fmt.Println("No categories")
		return
	}
	for _, category := range categories {
		fmt.Printf("%s  %s (%d)\n", category.ID, category.Title, category.TasksCount)
		for _, task := range category.Tasks {
			mark := " "
			if task.Status == entities.TaskStatusCompletada {
				mark = "x"
			}
			fmt.Printf("  [%s] %s  %s\n", mark, task.ID, task.Title)
		}
	}
}
