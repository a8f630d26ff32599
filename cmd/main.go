package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/rs/cors"

	"newsdesk/news"
	"newsdesk/repositories"
	"newsdesk/runtime/workers"
	"newsdesk/services"
	"newsdesk/store"
	"newsdesk/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting. Preferred over calling os.Exit or panic
// directly so that deferred cleanup (database close, index close) always
// executes and graceful shutdown stays structured.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. News catalogue & full-text index
	catalog, err := news.LoadCatalog()
	if err != nil {
		return err
	}
	index, err := news.NewIndex(catalog)
	if err != nil {
		return err
	}
	defer func() {
		_ = index.Close()
	}()

	// 4. Store, services, supervision
	messageStore := store.NewBadgerStore(db, log)
	chatService := services.NewChatService(messageStore, log)
	authService := services.NewAuthService(
		repositories.NewUserRepository(db),
		[]byte(config.AuthSecret),
		config.AuthTokenDuration,
	)
	newsService := services.NewNewsService(catalog, index, config.SecretKeyword, log)

	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewSnapshotFanout(log, messageStore))
	sup.Add(workers.NewHealthWorker(log, config.HealthInterval))

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supDone := make(chan struct{})
	go func() {
		defer close(supDone)
		sup.Run(ctx)
	}()

	// 6. HTTP Server Setup
	allowedOrigins := strings.Split(config.AllowedOrigins, ",")
	handler := transport.New(log, authService, newsService, chatService,
		allowedOrigins, config.ConnectionBufferSize)
	router := handler.SetupRouter()

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: c.Handler(router)}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}
