package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wedding-invitation-backend/internal/cache"
	"wedding-invitation-backend/internal/config"
	"wedding-invitation-backend/internal/database"
	"wedding-invitation-backend/internal/handler"
	"wedding-invitation-backend/internal/queue"
	appredis "wedding-invitation-backend/internal/redis"
	"wedding-invitation-backend/internal/repository"
	"wedding-invitation-backend/internal/service"
	"wedding-invitation-backend/internal/worker"
)

// Run wires the whole server together and blocks until shutdown.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := appredis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}

	// Repositories
	guestRepo := repository.NewGuestRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Cache and queue
	feedCache := cache.NewFeedCache(redisClient.Client)
	idemStore := cache.NewIdempotencyStore(redisClient.Client)
	publisher := queue.NewPublisher(redisClient.Client)
	consumer := queue.NewConsumer(redisClient.Client)

	// Services
	authService := service.NewAuthService(guestRepo, cfg)
	guestService := service.NewGuestService(guestRepo, publisher)
	commentService := service.NewCommentService(commentRepo, guestRepo, db, feedCache, idemStore, publisher)

	// Handlers
	router := NewRouter(RouterConfig{
		AuthHandler:    handler.NewAuthHandler(authService),
		GuestHandler:   handler.NewGuestHandler(guestService),
		CommentHandler: handler.NewCommentHandler(commentService),
		JWTSecret:      cfg.JWTSecret,
		AdminAPIKey:    cfg.AdminAPIKey,
	})

	// Background workers
	workerHandler := worker.NewHandler(commentService)
	manager := worker.NewManager(consumer, workerHandler, worker.DefaultManagerConfig())
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	defer manager.Stop()

	server := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	// Serve until interrupted, then drain
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Printf("Received %v, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
