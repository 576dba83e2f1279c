package commands

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/hogarhub/core/internal/adapters/notify"
	"github.com/hogarhub/core/internal/application/cache"
	"github.com/hogarhub/core/internal/application/reminder"
	"github.com/hogarhub/core/internal/application/services"
	"github.com/hogarhub/core/internal/devserver"
	"github.com/hogarhub/core/internal/infrastructure/api"
	"github.com/hogarhub/core/internal/infrastructure/config"
	"github.com/hogarhub/core/internal/infrastructure/logger"
)

// app bundles the wired services shared by all subcommands
type app struct {
	cfg      *config.Config
	logger   *logger.Logger
	client   *api.Client
	tasks    *services.CategoriesService
	super    *services.SupermarketService
	calendar *services.CalendarService
	notes    *services.NotesService
	debts    *services.DebtsService
	push     *services.PushService
}

func bootstrap() *app {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	client := api.NewClient(cfg.API, appLogger)
	gateway := notify.NewLogGateway(appLogger)
	engine := reminder.NewEngine(gateway, cfg.Notifications.Platform, cfg.Notifications.ChannelID, cfg.Notifications.Sound, appLogger)

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "hogar-cli"
	}

	return &app{
		cfg:      cfg,
		logger:   appLogger,
		client:   client,
		tasks:    services.NewCategoriesService(client, cache.NewCategoriesStore(), cfg.Cache.CategoriesTTL, appLogger),
		super:    services.NewSupermarketService(client, appLogger),
		calendar: services.NewCalendarService(client, engine, appLogger),
		notes:    services.NewNotesService(client, appLogger),
		debts:    services.NewDebtsService(client, appLogger),
		push:     services.NewPushService(client, gateway, cfg.Notifications.Platform, hostname, cfg.App.Version, appLogger),
	}
}

func (a *app) close() {
	_ = a.logger.Close()
}

// NewMockAPICommand creates the mockapi command
func NewMockAPICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mockapi",
		Short: "Run the local mock API server",
		Long:  "Run an in-memory server that mimics the family backend, for development without network access",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load()
			if err != nil {
				log.Fatalf("Failed to load configuration: %v", err)
			}
			appLogger, err := logger.New(cfg.Logger)
			if err != nil {
				log.Fatalf("Failed to initialize logger: %v", err)
			}

			server := devserver.New(cfg.API.BasePath, appLogger)
			addr := fmt.Sprintf(":%d", cfg.MockServer.Port)
			if err := server.Start(addr); err != nil {
				log.Fatalf("Mock API server stopped: %v", err)
			}
		},
	}
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Hogar version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Hogar Core v1.0.0")
			fmt.Println("Git Commit: development")
		},
	}
}
