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

	"github.com/nmthanh/warehouse-vision/internal/api/handlers"
	"github.com/nmthanh/warehouse-vision/internal/api/middleware"
	"github.com/nmthanh/warehouse-vision/internal/catalogindex"
	"github.com/nmthanh/warehouse-vision/internal/config"
	"github.com/nmthanh/warehouse-vision/internal/jobs"
	"github.com/nmthanh/warehouse-vision/internal/jobs/inmemory"
	"github.com/nmthanh/warehouse-vision/internal/logger"
	"github.com/nmthanh/warehouse-vision/internal/match"
	"github.com/nmthanh/warehouse-vision/internal/recon"
	"github.com/nmthanh/warehouse-vision/internal/warehouse"
)

func main() {
	cfg := config.Load()
	log := logger.New("warehouse-vision")

	ctx := context.Background()

	// Connect to the catalog search index
	connectCtx, cancelConnect := context.WithTimeout(ctx, 10*time.Second)
	index, err := catalogindex.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, log)
	cancelConnect()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to catalog index")
	}
	defer index.Close(ctx)

	// Core reconciliation pipeline
	matcher := match.New(index, cfg.MatchTimeout, log)
	pipeline := recon.NewPipeline(matcher)

	// Warehouse catalog and slips
	store := warehouse.NewStore()
	service := warehouse.NewService(store, index, log)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.JobQueueSize, cfg.JobWorkers, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		reconcileJob, ok := job.(*jobs.ReconcileInvoiceJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", reconcileJob.JobID).
			Msg("Processing reconcile job")

		reconcileJob.Result = pipeline.Reconcile(ctx, reconcileJob.RawText)

		log.Info().
			Str("job_id", reconcileJob.JobID).
			Int("items", len(reconcileJob.Result.Items)).
			Int("skipped", len(reconcileJob.Result.Skipped)).
			Msg("Reconcile job completed")

		return nil
	}

	go func() {
		log.Info().Int("workers", cfg.JobWorkers).Msg("Starting job workers")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Initialize handlers
	warehouseHandler := handlers.NewWarehouseHandler(service, log)
	reconcileHandler := handlers.NewReconcileHandler(pipeline, jobQueue, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			warehouseHandler.ListProducts(w, r)
		case http.MethodPost:
			warehouseHandler.CreateProduct(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/import-slips", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			warehouseHandler.CreateImportSlip(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/export-slips", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			warehouseHandler.CreateExportSlip(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/invoices/reconcile", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			reconcileHandler.Reconcile(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/invoices/reconcile-async", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			reconcileHandler.ReconcileAsync(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
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

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
