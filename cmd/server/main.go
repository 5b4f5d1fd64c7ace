package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/dmelnik/token-lending/internal/chain"
	"github.com/dmelnik/token-lending/internal/config"
	"github.com/dmelnik/token-lending/internal/gateway"
	"github.com/dmelnik/token-lending/internal/handler"
	"github.com/dmelnik/token-lending/internal/repository"
	"github.com/dmelnik/token-lending/internal/service"
	"github.com/dmelnik/token-lending/pkg/response"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Asset network client behind the call-rate gate. The in-process
	// simulated cluster stands in for a real cluster endpoint.
	client := chain.RateLimited(chain.NewMemoryClient(), cfg.Chain.RPS)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	tokenGateway, err := gateway.
		NewFactory(client, cfg.Chain.AirdropAmount, cfg.Chain.MintAmount).
		FromPath(ctx, cfg.Chain.GatewayConfigPath)
	cancel()
	if err != nil {
		log.Fatalf("Failed to initialize token gateway: %v", err)
	}

	loanRepo := repository.NewLoanRepository(db)
	lendingService := service.NewLendingService(loanRepo, tokenGateway)
	lendingHandler := handler.NewLendingHandler(lendingService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router := setupRoutes(lendingHandler, healthHandler, redisClient)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.GetReadTimeout(),
		WriteTimeout: cfg.Server.GetWriteTimeout(),
	}

	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.GetConnMaxLifetime())

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(lendingHandler *handler.LendingHandler, healthHandler *handler.HealthHandler, redisClient *redis.Client) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(handler.Idempotency(redisClient, 24*time.Hour))

	api.HandleFunc("/loans", lendingHandler.RequestLoan).Methods("PUT")
	api.HandleFunc("/loans/{loanId}", lendingHandler.SubmitLoan).Methods("PATCH")
	api.HandleFunc("/loans", lendingHandler.ViewLoans).Methods("GET")

	return router
}
