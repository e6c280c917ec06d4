package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/nmthanh/warehouse-vision/internal/api/middleware"
	"github.com/nmthanh/warehouse-vision/internal/jobs"
	"github.com/nmthanh/warehouse-vision/internal/layout"
	"github.com/nmthanh/warehouse-vision/internal/recon"
	"github.com/nmthanh/warehouse-vision/internal/warehouse"
)

// WarehouseHandler handles catalog and slip endpoints.
type WarehouseHandler struct {
	service *warehouse.Service
	log     zerolog.Logger
}

// NewWarehouseHandler creates a new warehouse handler.
func NewWarehouseHandler(service *warehouse.Service, log zerolog.Logger) *WarehouseHandler {
	return &WarehouseHandler{service: service, log: log}
}

// ListProducts handles GET /api/products
func (h *WarehouseHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.service.ListProducts(r.Context())

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"count":    len(products),
	})
}

// CreateProduct handles POST /api/products
func (h *WarehouseHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		SKU         string `json:"sku"`
		Description string `json:"description"`
		Stock       int    `json:"quantity_in_stock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.service.CreateProduct(r.Context(), req.Name, req.SKU, req.Description, req.Stock)
	if err != nil {
		h.log.Error().Err(err).Str("name", req.Name).Msg("Failed to create product")
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, product)
}

// CreateImportSlip handles POST /api/import-slips
func (h *WarehouseHandler) CreateImportSlip(w http.ResponseWriter, r *http.Request) {
	var req warehouse.ImportSlipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	slip, err := h.service.CreateImportSlip(r.Context(), req)
	if err != nil {
		h.log.Error().Err(err).Str("code", req.Code).Msg("Failed to create import slip")
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, slip)
}

// CreateExportSlip handles POST /api/export-slips
func (h *WarehouseHandler) CreateExportSlip(w http.ResponseWriter, r *http.Request) {
	var req warehouse.ExportSlipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	slip, err := h.service.CreateExportSlip(r.Context(), req)
	if err != nil {
		h.log.Error().Err(err).Str("code", req.Code).Msg("Failed to create export slip")
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, slip)
}

// Reconciler turns one invoice's raw text into reconciled line items.
type Reconciler interface {
	Reconcile(ctx context.Context, rawText string) *recon.BatchResult
}

// taggedWordRequest is one classified token as sent by the vision service.
// Labels arrive as raw model class names, BIO prefixes included.
type taggedWordRequest struct {
	Text  string `json:"text"`
	Label string `json:"label"`
	Box   [4]int `json:"box"`
}

// reconcileRequest accepts either pre-formatted raw text or the classified
// word boxes straight from the vision service.
type reconcileRequest struct {
	RawText string              `json:"raw_text"`
	Words   []taggedWordRequest `json:"words"`
}

// ReconcileHandler handles invoice reconciliation endpoints.
type ReconcileHandler struct {
	pipeline  Reconciler
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(pipeline Reconciler, publisher jobs.Publisher, log zerolog.Logger) *ReconcileHandler {
	return &ReconcileHandler{pipeline: pipeline, publisher: publisher, log: log}
}

// rawText extracts the invoice text from the request: verbatim when given,
// otherwise assembled from the tagged words.
func (h *ReconcileHandler) rawText(req reconcileRequest) (string, bool) {
	if req.RawText != "" {
		return req.RawText, true
	}
	if len(req.Words) == 0 {
		return "", false
	}

	words := make([]layout.TaggedWord, 0, len(req.Words))
	for _, w := range req.Words {
		words = append(words, layout.TaggedWord{
			Text:  w.Text,
			Label: layout.LabelFromModel(w.Label),
			Box:   w.Box,
		})
	}
	return layout.FormatLines(layout.GroupRows(words)), true
}

// Reconcile handles POST /api/invoices/reconcile
func (h *ReconcileHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	text, ok := h.rawText(req)
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "raw_text or words is required")
		return
	}

	result := h.pipeline.Reconcile(r.Context(), text)

	h.log.Info().
		Int("items", len(result.Items)).
		Int("skipped", len(result.Skipped)).
		Msg("Invoice reconciled")

	middleware.WriteJSON(w, http.StatusOK, result)
}

// ReconcileAsync handles POST /api/invoices/reconcile-async
func (h *ReconcileHandler) ReconcileAsync(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	text, ok := h.rawText(req)
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "raw_text or words is required")
		return
	}

	job := &jobs.ReconcileInvoiceJob{RawText: text}
	if err := h.publisher.PublishReconcile(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue reconcile job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue reconcile job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Msg("Reconcile job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{store: store, log: log}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
