package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/extratolab/extrato/internal/api/handlers"
	"github.com/extratolab/extrato/internal/api/middleware"
	"github.com/extratolab/extrato/internal/archive"
	"github.com/extratolab/extrato/internal/config"
	"github.com/extratolab/extrato/internal/jobs"
	"github.com/extratolab/extrato/internal/jobs/inmemory"
	"github.com/extratolab/extrato/internal/ledger"
	"github.com/extratolab/extrato/internal/logger"
	"github.com/extratolab/extrato/internal/pipeline"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New()

	ctx := context.Background()

	gemini, err := pipeline.NewGemini(ctx, cfg.Model)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	archiver := archive.New(cfg.Bucket)
	if archiver == nil {
		log.Warn().Msg("No GCS bucket configured - statement archiving disabled")
	}

	ledgers := ledger.NewStore()

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.QueueSize, cfg.Workers, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job *jobs.ExtractStatementJob) error {
		log.Info().
			Str("job_id", job.JobID).
			Str("filename", job.Filename).
			Msg("Processing extraction job")

		result, err := gemini.ExtractStatement(ctx, job.PDF)
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", job.JobID).
				Msg("Extraction failed")
			return err
		}

		led := ledger.New(gemini, gemini, log)
		led.Ingest(ctx, result.Rows, result.DeclaredFinalBalance)
		ledgers.Put(led)
		job.LedgerID = led.ID()

		log.Info().
			Str("job_id", job.JobID).
			Str("ledger_id", led.ID()).
			Int("rows", len(result.Rows)).
			Bool("mismatch", led.Mismatch()).
			Msg("Extraction completed")
		return nil
	}

	go func() {
		log.Info().Int("workers", cfg.Workers).Msg("Starting extraction workers")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job workers stopped with error")
		}
	}()

	statementsHandler := handlers.NewStatementsHandler(jobQueue, jobStore, archiver, log)
	ledgersHandler := handlers.NewLedgersHandler(ledgers, log)

	r := mux.NewRouter()
	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/statements", statementsHandler.Upload).Methods(http.MethodPost)
	api.HandleFunc("/jobs", statementsHandler.ListJobs).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{jobID}", statementsHandler.GetJob).Methods(http.MethodGet)
	api.HandleFunc("/categories", handlers.Categories).Methods(http.MethodGet)
	api.HandleFunc("/ledgers/{ledgerID}", ledgersHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/ledgers/{ledgerID}", ledgersHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/ledgers/{ledgerID}/filter", ledgersHandler.Filter).Methods(http.MethodPost)
	api.HandleFunc("/ledgers/{ledgerID}/export", ledgersHandler.Export).Methods(http.MethodGet)
	api.HandleFunc("/ledgers/{ledgerID}/records/{recordID}", ledgersHandler.EditRecord).Methods(http.MethodPatch)
	api.HandleFunc("/ledgers/{ledgerID}/records/{recordID}/suggest-category", ledgersHandler.SuggestCategory).Methods(http.MethodPost)

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(r),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
