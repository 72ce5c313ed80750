package cmd

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	config "github.com/taskboard/taskboard/internal/configs"
	repository "github.com/taskboard/taskboard/internal/repositories"
	"github.com/taskboard/taskboard/internal/services"
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Permanently remove soft-deleted tasks",
	Long:  "Clears history: every task marked deleted is removed from the store for good",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println(".env file not found, using environment variables")
		}

		cfg := config.Load()
		database := config.NewDatabaseClient(cfg.DatabaseDSN)
		taskRepo := repository.NewTaskRepository(database)

		bus, closeBus := newBus(cfg)
		defer closeBus()

		lifecycle := services.NewLifecycleService(taskRepo, bus)

		count, err := lifecycle.Purge(context.Background())
		if err != nil {
			return err
		}

		log.Printf("purged %d deleted tasks", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(purgeCmd)
}
