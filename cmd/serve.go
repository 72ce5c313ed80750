package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/taskboard/taskboard/internal/blob"
	config "github.com/taskboard/taskboard/internal/configs"
	"github.com/taskboard/taskboard/internal/geocode"
	httpapi "github.com/taskboard/taskboard/internal/http"
	"github.com/taskboard/taskboard/internal/identity"
	"github.com/taskboard/taskboard/internal/realtime"
	repository "github.com/taskboard/taskboard/internal/repositories"
	"github.com/taskboard/taskboard/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the task workflow HTTP API, the realtime event bus, and the auto-archive loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println(".env file not found, using environment variables")
		}

		cfg := config.Load()
		database := config.NewDatabaseClient(cfg.DatabaseDSN)
		taskRepo := repository.NewTaskRepository(database)

		bus, closeBus := newBus(cfg)
		defer closeBus()

		blobs, err := blob.NewLocalStore(cfg.BlobRoot, cfg.BlobBaseURL)
		if err != nil {
			return err
		}

		workflow := services.NewWorkflowService(taskRepo, bus, blobs, geocode.NewClient(cfg.GeocoderURL))
		lifecycle := services.NewLifecycleService(taskRepo, bus)
		lifecycle.StartAutoArchive(
			time.Duration(cfg.AutoArchiveIntervalMinutes)*time.Minute,
			time.Duration(cfg.AutoArchiveDays)*24*time.Hour,
		)

		e := echo.New()
		e.Static("/files", cfg.BlobRoot)
		handler := httpapi.NewHandler(workflow, lifecycle)
		httpapi.Register(e, handler, newResolver(cfg), cfg.RateLimit)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		go func() {
			log.Printf("HTTP server listening on %s", cfg.AppURL)
			if err := e.Start(cfg.AppURL); err != nil {
				log.Printf("server stopped: %v", err)
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second,
		)
		defer cancel()

		_ = e.Shutdown(shutdownCtx)
		lifecycle.Shutdown()

		log.Println("server shut down gracefully")
		return nil
	},
}

func newBus(cfg config.Config) (realtime.Bus, func()) {
	if cfg.RealtimeMode == "memory" {
		bus := realtime.NewMemoryBus()
		return bus, bus.Close
	}

	redisClient := config.NewRedisClient(cfg.RedisAddr)
	return realtime.NewRedisBus(redisClient, cfg.RealtimeChannel), redisClient.Close
}

func newResolver(cfg config.Config) identity.Resolver {
	if cfg.IdentityMode == "demo" {
		return identity.NewDemoResolver()
	}
	return identity.NewSessionResolver(cfg.JWTSecret)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
