package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"github.com/UDAVALAPATISURESH/app-chat/auth"
	"github.com/UDAVALAPATISURESH/app-chat/gateway"
	"github.com/UDAVALAPATISURESH/app-chat/repositories"
	"github.com/UDAVALAPATISURESH/app-chat/runtime"
	"github.com/UDAVALAPATISURESH/app-chat/runtime/workers"
	"github.com/UDAVALAPATISURESH/app-chat/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every defer (database cleanup included)
// executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Databases (hot and cold BadgerDB)
	hotDB, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("hot store opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing hot store...")
		_ = hotDB.Close()
	}()

	coldDB, err := badger.Open(badger.DefaultOptions(config.ArchiveFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("cold store opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing cold store...")
		_ = coldDB.Close()
	}()

	// 3. Repositories & routing core
	messageRepository := repositories.NewMessageRepository(hotDB, log)
	archiveRepository := repositories.NewArchiveRepository(coldDB, log)
	userRepository := repositories.NewUserRepository(hotDB)
	groupRepository := repositories.NewGroupRepository(hotDB)

	registry := runtime.NewRegistry()
	broker := runtime.NewBroker(log, messageRepository, archiveRepository,
		userRepository, groupRepository, registry, config.SinkTimeout)
	roomService := services.NewRoomService(userRepository, groupRepository)
	verifier := auth.NewTokenVerifier(userRepository, []byte(config.JWTSecret))

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Supervised background workers
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewArchivalWorker(log, messageRepository, archiveRepository,
		config.ArchiveInterval, config.RetentionWindow))
	go sup.Run(ctx)

	// 6. HTTP & WebSocket server
	gw := gateway.NewGateway(log, verifier, roomService, broker, registry,
		config.ConnectionBufferSize)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: gw.Router()}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
