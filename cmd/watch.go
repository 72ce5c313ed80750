package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	config "github.com/taskboard/taskboard/internal/configs"
	model "github.com/taskboard/taskboard/internal/models"
	"github.com/taskboard/taskboard/internal/realtime"
	repository "github.com/taskboard/taskboard/internal/repositories"
)

// watch runs a client reconciliation mirror in the terminal: it subscribes
// to the event bus, keeps a local mirror converged, and prints the board
// whenever it changes. Useful for eyeballing event flow during development.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the task board from the realtime bus",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println(".env file not found, using environment variables")
		}

		cfg := config.Load()
		database := config.NewDatabaseClient(cfg.DatabaseDSN)
		taskRepo := repository.NewTaskRepository(database)

		bus, closeBus := newBus(cfg)
		defer closeBus()

		mirror := realtime.NewMirror()
		fetch := func(ctx context.Context) ([]model.Task, error) {
			return taskRepo.List(ctx, repository.ListFilter{View: repository.ViewAll})
		}

		syncer := realtime.NewSyncer(bus, mirror, fetch,
			time.Duration(cfg.PollIntervalSeconds)*time.Second,
			time.Duration(cfg.ResubscribeWaitSeconds)*time.Second,
		)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := syncer.Start(ctx); err != nil {
			return err
		}
		defer syncer.Shutdown()

		printBoard(mirror)
		for {
			select {
			case <-mirror.Refresh():
				printBoard(mirror)
			case <-ctx.Done():
				return nil
			}
		}
	},
}

func printBoard(mirror *realtime.Mirror) {
	board := mirror.Board()
	log.Printf("---- board (%d tasks) ----", len(board))
	for _, t := range board {
		claimant := "-"
		if t.TakenBy != nil {
			claimant = *t.TakenBy
		}
		log.Printf("%s  %-22s v%d  %s  %s", t.ID, t.Status, t.VersionNumber, claimant, t.BusinessName)
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
