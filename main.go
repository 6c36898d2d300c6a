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

	"quitPathAPI/handlers"
	"quitPathAPI/internal/notification"
	"quitPathAPI/internal/workers"
	"quitPathAPI/middleware"
	"quitPathAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool                 *pgxpool.Pool
	catalogService         *services.CatalogService
	userService            *services.UserService
	pointsService          *services.PointsService
	notificationService    *services.NotificationService
	notificationDispatcher *services.NotificationDispatcher
	eventDispatcher        *services.EventDispatcher
	challengeService       *services.ChallengeService
	questionnaireService   *services.QuestionnaireService
	statsService           *services.StatsService
	fcmService             *notification.FCMService
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

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
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

	log.Println("Successfully connected to database")

	catalogPath := os.Getenv("CHALLENGE_CATALOG_PATH")
	if catalogPath == "" {
		catalogPath = "./config/challenge_catalog.yaml"
	}
	catalogService, err = services.NewCatalogService(catalogPath)
	if err != nil {
		log.Fatal("Failed to load challenge catalog:", err)
	}
	log.Printf("Challenge catalog loaded: %d types", len(catalogService.ListChallengeTypes()))

	userService = services.NewUserService(dbPool)
	pointsService = services.NewPointsService(dbPool)
	notificationService = services.NewNotificationService(dbPool)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationDispatcher = services.NewNotificationDispatcher(notificationService, fcmService)
		notificationService.SetDispatcher(notificationDispatcher)
		log.Println("FCM push pipeline initialized")
	}

	eventDispatcher = services.NewEventDispatcher()
	eventDispatcher.SetPointsCreditor(pointsService)
	eventDispatcher.SetNotificationCreator(notificationService)

	challengeService = services.NewChallengeService(dbPool, catalogService, eventDispatcher)
	questionnaireService = services.NewQuestionnaireService(dbPool, pointsService, notificationService)
	statsService = services.NewStatsService(dbPool, catalogService)

	services.InitMetrics()
	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	challengeHandler := handlers.NewChallengeHandler(challengeService)
	questionnaireHandler := handlers.NewQuestionnaireHandler(questionnaireService)
	statsHandler := handlers.NewStatsHandler(statsService, pointsService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, userService)
	webhookHandler := handlers.NewWebhookHandler(userService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "quitPath-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	// Catalog is public; auth is optional so clients can browse before signup.
	public := api.PathPrefix("").Subrouter()
	public.Use(middleware.OptionalAuthMiddleware)
	public.HandleFunc("/challenge-types", catalogHandler.ListChallengeTypes).Methods("GET")
	public.HandleFunc("/challenge-types/{typeId}", catalogHandler.GetChallengeType).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user/update-profile", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/delete-account", userHandler.DeleteAccount).Methods("DELETE")

	protected.HandleFunc("/challenges/{typeId}/join", challengeHandler.Join).Methods("POST")
	protected.HandleFunc("/challenges/{typeId}/pause", challengeHandler.Pause).Methods("POST")
	protected.HandleFunc("/challenges/{typeId}/resume", challengeHandler.Resume).Methods("POST")
	protected.HandleFunc("/challenges/{typeId}/cancel", challengeHandler.Cancel).Methods("POST")
	protected.HandleFunc("/challenges/{typeId}/restart", challengeHandler.Restart).Methods("POST")
	protected.HandleFunc("/challenges/{typeId}/widget", challengeHandler.GetWidget).Methods("GET")
	protected.HandleFunc("/challenges/{typeId}/observations", challengeHandler.ListObservations).Methods("GET")

	protected.HandleFunc("/observations", challengeHandler.LogObservation).Methods("POST")

	protected.HandleFunc("/questionnaires/complete", questionnaireHandler.Complete).Methods("POST")

	protected.HandleFunc("/user/stats", statsHandler.GetUserStats).Methods("GET")
	protected.HandleFunc("/user/challenges", statsHandler.GetActiveChallenges).Methods("GET")
	protected.HandleFunc("/points/balance", statsHandler.GetPointsBalance).Methods("GET")
	protected.HandleFunc("/points/ledger", statsHandler.GetPointsLedger).Methods("GET")

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/read-all", notificationHandler.MarkAllAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/{id}", notificationHandler.DeleteNotification).Methods("DELETE")
	protected.HandleFunc("/notifications/preferences", notificationHandler.GetPreferences).Methods("GET")
	protected.HandleFunc("/notifications/preferences", notificationHandler.UpdatePreferences).Methods("PUT")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	scheduler, err := workers.Start(challengeService, notificationService)
	if err != nil {
		log.Fatal("Failed to start background scheduler:", err)
	}

	// CORS configuration
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

	scheduler.Stop()
	eventDispatcher.Stop()
	if notificationDispatcher != nil {
		notificationDispatcher.Stop()
	}

	log.Println("Server shutdown complete")
}
