package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lmoren/taskdeck-be/internal/api"
	"github.com/lmoren/taskdeck-be/internal/auth"
	"github.com/lmoren/taskdeck-be/internal/config"
	"github.com/lmoren/taskdeck-be/internal/database"
	"github.com/lmoren/taskdeck-be/internal/logger"
	"github.com/lmoren/taskdeck-be/internal/monitoring"
	"github.com/lmoren/taskdeck-be/internal/services"
	"github.com/lmoren/taskdeck-be/internal/websocket"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	auth.SetSecret(cfg.JWTSecret)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	eventService := services.NewEventService(db)
	userService := services.NewUserService(db, cfg.PasswordMinLength, eventService)
	taskService := services.NewTaskService(db, hub, eventService)

	// Set up and run the background due date scanner
	dueScanner, err := monitoring.NewDueScanner(taskService, eventService, hub, cfg.DueScanCron)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize due date scanner")
	}
	go dueScanner.Run()

	// Set up router
	router := api.NewRouter(hub, userService, taskService, eventService, cfg.AllowedOrigins)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	dueScanner.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
