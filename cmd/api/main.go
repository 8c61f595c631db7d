package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ingressolabs/ticketsales/config"
	"github.com/ingressolabs/ticketsales/internal/adapter/cache"
	"github.com/ingressolabs/ticketsales/internal/adapter/gateway/payment"
	"github.com/ingressolabs/ticketsales/internal/adapter/handler"
	"github.com/ingressolabs/ticketsales/internal/adapter/repository/postgres"
	"github.com/ingressolabs/ticketsales/internal/core/services"
	"github.com/ingressolabs/ticketsales/internal/platform/database"
	"github.com/ingressolabs/ticketsales/internal/platform/redisconn"
)

func main() {
	cfg := config.Load()

	db, err := database.NewPostgresDB(database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		log.Fatalf("Failed to connect to db after retries: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	defer db.Close()

	redisClient, err := redisconn.NewClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected successfully")

	ticketRepo := postgres.NewTicketRepository(db)
	purchaseRepo := postgres.NewPurchaseRepository(db)
	customerRepo := postgres.NewCustomerRepository(db)
	txManager := postgres.NewTxManager(db)

	gateway := payment.NewClient(payment.Config{
		BaseURL:        cfg.GatewayBaseURL,
		APIKey:         cfg.GatewayAPIKey,
		RequestTimeout: cfg.PaymentTimeout,
		MaxFailures:    cfg.GatewayMaxFailures,
		Cooldown:       cfg.GatewayCooldown,
	})

	listingCache := cache.NewAvailabilityCache(redisClient, cfg.ListingCacheTTL)
	idempotencyStore := cache.NewIdempotencyStore(redisClient)

	purchaseService := services.NewPurchaseService(
		customerRepo, ticketRepo, purchaseRepo, txManager, gateway,
		listingCache, idempotencyStore,
		services.PurchaseServiceConfig{
			PaymentTimeout:         cfg.PaymentTimeout,
			ChargeKeyTTL:           cfg.ChargeKeyTTL,
			ReservationHoldTimeout: cfg.ReservationHoldTimeout,
			CleanupInterval:        cfg.CleanupInterval,
		})
	inventoryService := services.NewInventoryService(ticketRepo, listingCache)

	purchaseHandler := handler.NewPurchaseHandler(purchaseService, customerRepo)
	ticketHandler := handler.NewTicketHandler(inventoryService)
	auth := handler.NewAuthMiddleware(cfg.JWTSecret)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go purchaseService.RunHoldExpiry(sweepCtx)

	router := mux.NewRouter()

	authed := router.NewRoute().Subrouter()
	authed.Use(auth.Authenticate)
	authed.HandleFunc("/purchases", purchaseHandler.Create).Methods(http.MethodPost)
	authed.HandleFunc("/purchases/{id}", purchaseHandler.GetByID).Methods(http.MethodGet)
	authed.HandleFunc("/events/{eventId}/tickets", ticketHandler.Provision).Methods(http.MethodPost)

	router.HandleFunc("/events/{eventId}/tickets", ticketHandler.List).Methods(http.MethodGet)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, `{"status":"unhealthy"}`, http.StatusServiceUnavailable)
			return
		}
		if err := redisconn.HealthCheck(r.Context(), redisClient); err != nil {
			http.Error(w, `{"status":"unhealthy"}`, http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	go func() {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		log.Printf("Metrics server starting on port :%s", cfg.MetricsPort)
		if err := http.ListenAndServe(":"+cfg.MetricsPort, metricsMux); err != nil && err != http.ErrServerClosed {
			log.Printf("Metrics server stopped: %v", err)
		}
	}()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.PaymentTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")
	stopSweeper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
