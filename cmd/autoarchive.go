package cmd

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	config "github.com/taskboard/taskboard/internal/configs"
	repository "github.com/taskboard/taskboard/internal/repositories"
	"github.com/taskboard/taskboard/internal/services"
)

var autoArchiveCmd = &cobra.Command{
	Use:   "autoarchive",
	Short: "Archive old completed tasks once",
	Long:  "Runs one pass of the auto-archive rule: completed tasks older than the retention window are moved to the archive view",
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

		count, err := lifecycle.AutoArchive(
			context.Background(),
			time.Duration(cfg.AutoArchiveDays)*24*time.Hour,
		)
		if err != nil {
			return err
		}

		log.Printf("archived %d completed tasks", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(autoArchiveCmd)
}
