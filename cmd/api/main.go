package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/outreachlabs/leadengine/internal/infra/database"
	"github.com/outreachlabs/leadengine/internal/infra/http/handlers"
	"github.com/outreachlabs/leadengine/internal/infra/http/middleware"
	"github.com/outreachlabs/leadengine/internal/infra/mail"
	"github.com/outreachlabs/leadengine/internal/infra/queue"
	"github.com/outreachlabs/leadengine/internal/infra/sourcing"
	"github.com/outreachlabs/leadengine/internal/infra/worker"
	"github.com/outreachlabs/leadengine/internal/usecase"
)

func main() {
	godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(
		envOr("RABBITMQ_USER", "guest"),
		envOr("RABBITMQ_PASS", "guest"),
		envOr("RABBITMQ_HOST", "localhost"),
		envOr("RABBITMQ_PORT", "5672"),
	)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// Repositories
	leadRepo := database.NewLeadRepository(db)
	auditRepo := database.NewAuditLogRepository(db)
	convRepo := database.NewConversationRepository(db)
	eventRepo := database.NewProcessedEventRepository(db)
	counterRepo := database.NewContactCounterRepository(db)
	quotaRepo := database.NewSourcingQuotaRepository(db)

	// External collaborators
	producer := queue.NewProducer(rabbitMQ.Ch)
	smtpPort, _ := strconv.Atoi(envOr("SMTP_PORT", "587"))
	mailSender := mail.NewEmailSender(
		os.Getenv("SMTP_HOST"), smtpPort,
		os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASS"),
		os.Getenv("SMTP_FROM"),
	)

	// Source adapters share one per-host limiter so a burst against a
	// single provider stays polite.
	limiter := sourcing.NewHostLimiter(2, 4)
	sourcingURL := os.Getenv("SOURCING_API_URL")
	sourcingKey := os.Getenv("SOURCING_API_KEY")
	adapters := []usecase.SourceAdapter{
		sourcing.NewHiringBoardsAdapter(sourcingURL, sourcingKey, limiter),
		sourcing.NewStartupDirectoryAdapter(sourcingURL, sourcingKey, limiter),
		sourcing.NewForumPostsAdapter(sourcingURL, sourcingKey, limiter),
		sourcing.NewCompanyDatabaseAdapter(sourcingURL, sourcingKey, limiter),
		sourcing.NewSocialMentionsAdapter(sourcingURL, sourcingKey, envOr("SOURCING_QUERY", "customer support automation"), limiter),
		sourcing.NewLookalikeAdapter(leadRepo, sourcingURL, sourcingKey, limiter),
	}
	channels := make([]string, len(adapters))
	for i, a := range adapters {
		channels[i] = a.Channel()
	}

	// Domain services
	gate := usecase.NewEmailGate(usecase.DefaultMXResolver())
	statusService := usecase.NewStatusService(leadRepo, leadRepo)
	compliance := usecase.NewComplianceEngine(counterRepo, auditRepo, usecase.DefaultComplianceConfig())
	calculator := usecase.NewRevenueCalculator(usecase.DefaultRevenueConfig())
	planner := usecase.NewVolumePlanner(usecase.DefaultVolumeConfig())

	// Use cases
	ingestUC := usecase.NewSourceAndIngestUseCase(leadRepo, leadRepo, gate, adapters)
	contactUC := usecase.NewContactLeadUseCase(leadRepo, convRepo, auditRepo, statusService, compliance, mailSender)
	inboundUC := usecase.NewProcessInboundUseCase(leadRepo, convRepo, statusService, eventRepo, producer)

	// Background workers
	queueWorker := queue.NewWorker(rabbitMQ.Ch, inboundUC, contactUC)
	go queueWorker.StartInbound(ctx)
	go queueWorker.StartConfirmations(ctx)

	volumeWorker := worker.NewVolumeControlWorker(leadRepo, auditRepo, calculator, planner, quotaRepo, channels)
	go volumeWorker.Start(ctx)

	// Handlers
	ingestHandler := handlers.NewIngestHandler(ingestUC, quotaRepo)
	webhookHandler := handlers.NewWebhookHandler(producer)
	contactHandler := handlers.NewContactHandler(contactUC)
	complianceHandler := handlers.NewComplianceHandler(leadRepo, compliance)
	revenueHandler := handlers.NewRevenueHandler(leadRepo, calculator)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	r.Post("/agent/source", ingestHandler.Handle)
	r.Post("/agent/webhooks/inbound", webhookHandler.Handle)
	r.Post("/agent/contact/{leadID}", contactHandler.Handle)
	r.Get("/agent/compliance/{leadID}", complianceHandler.Handle)
	r.Get("/agent/revenue", revenueHandler.Handle)
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := ":" + envOr("PORT", "8080")
	log.Printf("lead engine listening on %s", port)

	server := &http.Server{Addr: port, Handler: r}
	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
