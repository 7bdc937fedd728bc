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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xavierca1/leadhub/internal/bootstrap"
	"github.com/xavierca1/leadhub/internal/config"
	"github.com/xavierca1/leadhub/internal/infra/http/handlers"
	"github.com/xavierca1/leadhub/internal/infra/http/middleware"
	"github.com/xavierca1/leadhub/internal/infra/integration/kommo"
	"github.com/xavierca1/leadhub/internal/infra/integration/whatsapp"
	"github.com/xavierca1/leadhub/internal/infra/logging"
	"github.com/xavierca1/leadhub/internal/infra/mail"
	"github.com/xavierca1/leadhub/internal/infra/queue"
	"github.com/xavierca1/leadhub/internal/infra/worker"
	"github.com/xavierca1/leadhub/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.AppEnv, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	os.Exit(exitCode(logger, run(cfg, logger)))
}

// exitCode registra o erro final e faz o Sync antes do os.Exit, que pula defers.
func exitCode(logger *zap.Logger, err error) int {
	code := 0
	if err != nil {
		logger.Error("❌ servidor encerrado com erro", zap.Error(err))
		code = 1
	}
	_ = logger.Sync()
	return code
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Stores
	stores, err := bootstrap.OpenLeadStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	historyStore, closeHistory, err := bootstrap.OpenHistory(cfg)
	if err != nil {
		return err
	}
	defer closeHistory()

	metrics := middleware.Recorder{}

	// 2. Fila e automação (opcional)
	var (
		events      usecase.EventPublisher
		brokerState *queue.RabbitMQ
	)
	if cfg.EventsEnabled() {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()
		brokerState = rabbitMQ
		events = queue.NewProducer(rabbitMQ.Ch, metrics)

		mailSender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom)
		waClient := whatsapp.NewClient(cfg.WhatsAppAccessToken, cfg.WhatsAppPhoneID, logger)
		waSender := mail.NewWhatsAppSender(waClient, cfg.WhatsAppTemplateID, logger)

		consumer := queue.NewWorker(rabbitMQ.Ch, mailSender, waSender, metrics, logger)
		if crm := kommo.NewClient(cfg.KommoBaseURL, cfg.KommoAPIToken, cfg.KommoStatusID, logger); crm.Configured() {
			consumer.CRM = crm
			logger.Info("🔗 sincronização com Kommo ativada")
		}
		go func() {
			if err := consumer.Start(ctx, queue.QueueName); err != nil {
				logger.Error("❌ worker da fila parou", zap.Error(err))
			}
		}()
		logger.Info("🐇 RabbitMQ conectado", zap.String("queue", queue.QueueName))
	} else {
		logger.Warn("⚠️ RABBITMQ_URL vazio: eventos de lead desativados")
	}

	// 3. UseCases
	importUC := usecase.NewImportLeadsUseCase(stores.Import, historyStore, events, metrics, cfg.ImportBatchDelay, logger)
	uploadHandler := handlers.NewUploadHandler(importUC, historyStore, cfg.UploadMaxBytes, logger)

	var leadHandler *handlers.LeadHandler
	if stores.Repo != nil {
		captureUC := usecase.NewCaptureLeadUseCase(stores.Repo, events, cfg.CaptureRequireEvent, logger)
		stageUC := usecase.NewUpdateLeadStageUseCase(stores.Repo, events, logger)
		leadHandler = handlers.NewLeadHandler(captureUC, stageUC, logger)
		go leadHandler.Limiter().Cleanup(ctx, 10*time.Minute)

		if events != nil {
			followUp := worker.NewFollowUpWorker(stores.Repo, events, cfg.FollowUpInterval, cfg.FollowUpAfter, logger)
			go followUp.Start(ctx)
		}
	} else {
		logger.Warn("⚠️ sem DATABASE_URL: capture, stage e follow-up desativados")
	}

	// Health aceita nil; evita interface com ponteiro nil dentro.
	health := handlers.NewHealthHandler(nil, nil, cfg.LeadStore, cfg.HistoryStore)
	if stores.DB != nil {
		health.DB = stores.DB
	}
	if brokerState != nil {
		health.RabbitMQ = brokerState.Conn
	}

	// 4. Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/leads", func(r chi.Router) {
		r.Post("/upload", uploadHandler.Upload)
		r.Get("/upload/template", uploadHandler.Template)
		r.Get("/upload/history", uploadHandler.History)
		r.Get("/upload/stats", uploadHandler.Stats)

		if leadHandler != nil {
			r.Post("/capture", leadHandler.CaptureLead)
			r.Patch("/{id}/stage", leadHandler.UpdateStage)
		}
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🔥 LeadHub API rodando", zap.String("port", cfg.Port), zap.String("lead_store", cfg.LeadStore))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("🛑 desligando servidor")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
