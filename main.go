package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lifeSpheresAPI/handlers"
	"lifeSpheresAPI/internal/notification"
	"lifeSpheresAPI/internal/storage"
	"lifeSpheresAPI/internal/workers"
	"lifeSpheresAPI/middleware"
	"lifeSpheresAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool              *pgxpool.Pool
	kvStore             *storage.PostgresStore
	streakService       *services.StreakService
	notificationService *services.NotificationService
	fcmPlatform         *notification.FCMPlatform
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	kvStore = storage.NewPostgresStore(dbPool)
	if err := kvStore.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to prepare storage schema:", err)
	}

	log.Println("Successfully connected to storage backend")

	notificationService = services.NewNotificationService(kvStore)
	streakService = services.NewStreakService(services.NewStreakStore(kvStore), notificationService)

	fcmPlatform, err = notification.NewFCMPlatform("./serviceAccountKey.json", notificationService)
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationService.SetPlatform(fcmPlatform)
		log.Println("FCM notification platform initialized successfully")
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	streakHandler := handlers.NewStreakHandler(streakService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	stopRecalc := workers.StartRecalcWorker(streakService, time.Hour)
	defer stopRecalc()

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := kvStore.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "storage connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "lifeSpheres-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 — PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/streak", streakHandler.GetStreakData).Methods("GET")
	protected.HandleFunc("/streak", streakHandler.ResetStreakData).Methods("DELETE")
	protected.HandleFunc("/streak/activity", streakHandler.RecordActivity).Methods("POST")
	protected.HandleFunc("/streak/recalculate", streakHandler.Recalculate).Methods("POST")
	protected.HandleFunc("/streak/badge", streakHandler.GetCurrentBadge).Methods("GET")
	protected.HandleFunc("/streak/badge/next", streakHandler.GetNextBadge).Methods("GET")
	protected.HandleFunc("/streak/badges", streakHandler.GetEarnedBadges).Methods("GET")
	protected.HandleFunc("/streak/risk", streakHandler.GetRiskStatus).Methods("GET")
	protected.HandleFunc("/streak/stats/weekly", streakHandler.GetWeeklyStats).Methods("GET")
	protected.HandleFunc("/streak/notifications/refresh", streakHandler.RefreshNotifications).Methods("POST")

	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
