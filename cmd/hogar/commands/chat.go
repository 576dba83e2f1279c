package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

// NewChatCommand creates the chat command with subcommands
func NewChatCommand() *cobra.Command {
	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Push messages between family devices",
	}

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register this device for push messages",
		Run: func(cmd *cobra.Command, args []string) {
			name, _ := cmd.Flags().GetString("name")

			a := bootstrap()
			defer a.close()

			token, err := a.push.Register(context.Background(), name)
			if err != nil {
				log.Fatalf("Failed to register device: %v", err)
			}
			fmt.Printf("Registered as %q with token %s\n", a.push.DisplayName(), token)
		},
	}
	registerCmd.Flags().String("name", "", "Display name for this device")
	chatCmd.AddCommand(registerCmd)

	chatCmd.AddCommand(&cobra.Command{
		Use:   "devices",
		Short: "List registered devices",
		Run: func(cmd *cobra.Command, args []string) {
			a := bootstrap()
			defer a.close()

			devices, err := a.push.Devices(context.Background())
			if err != nil {
				log.Fatalf("Failed to list devices: %v", err)
			}
			if len(devices) == 0 {
				fmt.Println("No devices registered")
				return
			}
			for _, device := range devices {
				name := device.DisplayName
				if name == "" {
					name = "(sin nombre)"
				}
				fmt.Printf("%s  %s  %s\n", device.Token, device.Platform, name)
			}
		},
	})

	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message to one device or to everyone",
		Run: func(cmd *cobra.Command, args []string) {
			message, _ := cmd.Flags().GetString("message")
			target, _ := cmd.Flags().GetString("to")
			if message == "" {
				log.Fatal("Message is required")
			}

			a := bootstrap()
			defer a.close()

			var err error
			if target == "" {
				err = a.push.Broadcast(context.Background(), message)
			} else {
				err = a.push.SendMessage(context.Background(), target, message)
			}
			if err != nil {
				log.Fatalf("Failed to send message: %v", err)
			}
			fmt.Println("Message sent")
		},
	}
	sendCmd.Flags().String("message", "", "Message text (required)")
	sendCmd.Flags().String("to", "", "Target device token, empty broadcasts to all")
	chatCmd.AddCommand(sendCmd)

	renameCmd := &cobra.Command{
		Use:   "rename",
		Short: "Rename a registered device",
		Run: func(cmd *cobra.Command, args []string) {
			deviceID, _ := cmd.Flags().GetString("device")
			name, _ := cmd.Flags().GetString("name")
			if deviceID == "" || name == "" {
				log.Fatal("Device and name are required")
			}

			a := bootstrap()
			defer a.close()

			if err := a.push.Rename(context.Background(), deviceID, name); err != nil {
				log.Fatalf("Failed to rename device: %v", err)
			}
			fmt.Println("Device renamed")
		},
	}
	renameCmd.Flags().String("device", "", "Device id or token (required)")
	renameCmd.Flags().String("name", "", "New display name (required)")
	chatCmd.AddCommand(renameCmd)

	return chatCmd
}
