package http

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"datawash/internal/cleaning"
	apierrors "datawash/internal/errors"
	"datawash/internal/middleware"
	"datawash/internal/services"
	"datawash/pkg/contracts/domain"
)

// DatasetHandler handles dataset HTTP requests
type DatasetHandler struct {
	service        DatasetServiceInterface
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	validator      *middleware.ValidationMiddleware
	queryParams    *middleware.QueryParamValidator
	maxUploadBytes int64
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(service DatasetServiceInterface, maxUploadBytes int64, logger *slog.Logger) *DatasetHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	errorHandler := apierrors.NewErrorHandler(logger, false)
	return &DatasetHandler{
		service:        service,
		logger:         logger.With(slog.String("handler", "datasets")),
		errorHandler:   errorHandler,
		validator:      middleware.NewValidationMiddleware(logger, errorHandler),
		queryParams:    middleware.NewQueryParamValidator(logger, errorHandler),
		maxUploadBytes: maxUploadBytes,
	}
}

// ProcessRequest carries the cleaning options for one run.
type ProcessRequest struct {
	domain.Options
}

// uploadMeta is validated before the file reaches the reader; the filename
// rule rejects traversal sequences in names that exports echo back.
type uploadMeta struct {
	Filename string `json:"filename" validate:"required,filename"`
}

// Bind implements the render.Binder interface; defaults are applied before
// struct validation runs.
func (p *ProcessRequest) Bind(r *http.Request) error {
	if p.MissingValueStrategy == "" {
		p.MissingValueStrategy = domain.StrategyMean
	}
	return nil
}

// Routes returns a chi router for dataset endpoints
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(h.validator.ValidateRequest)

	r.Post("/", h.UploadDataset)
	r.Get("/", h.ListDatasets)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.DatasetCtx)
		r.Get("/", h.GetDataset)
		r.Delete("/", h.DeleteDataset)
		r.With(middleware.ContentTypeValidator(h.errorHandler, "application/json")).
			Post("/process", h.ProcessDataset)
		r.Get("/preview", h.PreviewDataset)
		r.Get("/stats", h.StatsDataset)
		r.Get("/summary", h.SummarizeDataset)
		r.Get("/export", h.ExportDataset)
		r.Get("/report", h.ReportDataset)
	})

	return r
}

// DatasetCtx middleware validates the {id} route parameter
func (h *DatasetHandler) DatasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("id", "Dataset id must be a positive integer"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// datasetID re-reads the id parameter already validated by DatasetCtx.
func datasetID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}

// UploadDataset handles POST /api/datasets
func (h *DatasetHandler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)
	tracer := otel.Tracer("dataset-handler")

	ctx, span := tracer.Start(ctx, "dataset_handler.upload",
		trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", "/api/datasets"),
			attribute.String("request_id", reqID),
		),
	)
	defer span.End()

	// Cap the request body; FormFile surfaces the limit as *http.MaxBytesError
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		span.RecordError(err)

		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			h.errorHandler.HandleError(w, r, apierrors.FileTooLargeError(h.maxUploadBytes))
			return
		}

		h.logger.WarnContext(ctx, "multipart parse failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "Multipart field 'file' is required"))
		return
	}
	defer file.Close()

	if err := h.validator.ValidateStruct(uploadMeta{Filename: header.Filename}); err != nil {
		span.RecordError(err)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "dataset upload request",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
		slog.String("request_id", reqID))

	ds, err := h.service.Upload(ctx, header.Filename, header.Size, file)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")

		switch {
		case errors.Is(err, services.ErrUnsupportedFormat):
			h.errorHandler.HandleError(w, r, apierrors.InvalidFileTypeError(header.Filename))
		case errors.Is(err, services.ErrInvalidFile):
			h.errorHandler.HandleError(w, r, apierrors.InvalidFileError(err))
		default:
			h.errorHandler.HandleError(w, r, err)
		}
		return
	}

	span.SetAttributes(
		attribute.Int64("dataset.id", ds.ID),
		attribute.String("dataset.format", ds.Format),
		attribute.Int("dataset.rows", ds.Raw.RowCount()),
	)

	h.logger.InfoContext(ctx, "dataset uploaded",
		slog.Int64("dataset_id", ds.ID),
		slog.String("filename", ds.Filename),
		slog.String("format", ds.Format),
		slog.Int("rows", ds.Raw.RowCount()),
		slog.String("request_id", reqID))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   ds.Meta(),
	})
}

// ListDatasets handles GET /api/datasets
func (h *DatasetHandler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	metas := h.service.List(ctx)

	h.logger.DebugContext(ctx, "datasets listed",
		slog.Int("count", len(metas)),
		slog.String("request_id", middleware.GetReqID(ctx)))

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   metas,
		"count":  len(metas),
	})
}

// GetDataset handles GET /api/datasets/{id}
func (h *DatasetHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := datasetID(r)

	ds, err := h.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrDatasetNotFound) {
			h.errorHandler.HandleError(w, r, apierrors.DatasetNotFoundError(id))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   ds.Meta(),
	})
}

// DeleteDataset handles DELETE /api/datasets/{id}
func (h *DatasetHandler) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := datasetID(r)
	reqID := middleware.GetReqID(ctx)

	if err := h.service.Delete(ctx, id); err != nil {
		if errors.Is(err, services.ErrDatasetNotFound) {
			h.errorHandler.HandleError(w, r, apierrors.DatasetNotFoundError(id))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "dataset deleted",
		slog.Int64("dataset_id", id),
		slog.String("request_id", reqID))

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"message": "Dataset deleted",
	})
}

// ProcessDataset handles POST /api/datasets/{id}/process
func (h *DatasetHandler) ProcessDataset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := datasetID(r)
	reqID := middleware.GetReqID(ctx)
	tracer := otel.Tracer("dataset-handler")

	ctx, span := tracer.Start(ctx, "dataset_handler.process",
		trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", "/api/datasets/{id}/process"),
			attribute.Int64("dataset.id", id),
			attribute.String("request_id", reqID),
		),
	)
	defer span.End()

	// An absent body runs the pipeline with defaults
	data := &ProcessRequest{}
	if r.ContentLength == 0 {
		data.Options = domain.Options{MissingValueStrategy: domain.StrategyMean}
	} else if err := render.Bind(r, data); err != nil {
		span.RecordError(err)
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.validator.ValidateStruct(data.Options); err != nil {
		span.RecordError(err)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "dataset process request",
		slog.Int64("dataset_id", id),
		slog.String("strategy", data.MissingValueStrategy),
		slog.Bool("remove_outliers", data.RemoveOutliers),
		slog.Bool("fix_data_types", data.FixDataTypes),
		slog.Bool("standardize_column_names", data.StandardizeColumnNames),
		slog.String("request_id", reqID))

	ds, err := h.service.Process(ctx, id, data.Options)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "processing failed")

		switch {
		case errors.Is(err, services.ErrDatasetNotFound):
			h.errorHandler.HandleError(w, r, apierrors.DatasetNotFoundError(id))
		case errors.Is(err, cleaning.ErrUnsupportedStrategy):
			h.errorHandler.HandleError(w, r, apierrors.UnsupportedStrategyError(err))
		case errors.Is(err, cleaning.ErrInvalidInput):
			h.errorHandler.HandleError(w, r, apierrors.InvalidDatasetError(err))
		default:
			h.errorHandler.HandleError(w, r, err)
		}
		return
	}

	span.SetAttributes(
		attribute.Int("dataset.rows_before", ds.Stats.TotalRows),
		attribute.Int("dataset.rows_after", ds.Cleaned.RowCount()),
		attribute.Int("dataset.duplicates_removed", ds.Stats.DuplicatesRemoved),
	)

	h.logger.InfoContext(ctx, "dataset processed",
		slog.Int64("dataset_id", id),
		slog.Int("rows_before", ds.Stats.TotalRows),
		slog.Int("rows_after", ds.Cleaned.RowCount()),
		slog.String("request_id", reqID))

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   ds.Meta(),
	})
}

// PreviewDataset handles GET /api/datasets/{id}/preview
func (h *DatasetHandler) PreviewDataset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := datasetID(r)

	view, ok := h.queryParams.ValidateEnum(w, r, "view", []string{domain.ViewRaw, domain.ViewCleaned}, "")
	if !ok {
		return
	}
	// Window clamping happens in the service; only reject non-integers here
	offset, ok := h.queryParams.ValidateInt(w, r, "offset", math.MinInt32, math.MaxInt32, 0)
	if !ok {
		return
	}
	limit, ok := h.queryParams.ValidateInt(w, r, "limit", math.MinInt32, math.MaxInt32, 0)
	if !ok {
		return
	}

	preview, err := h.service.Preview(ctx, id, view, offset, limit)
	if err != nil {
		h.handleDatasetError(w, r, id, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   preview,
	})
}

// StatsDataset handles GET /api/datasets/{id}/stats
func (h *DatasetHandler) StatsDataset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := datasetID(r)

	stats, err := h.service.Stats(ctx, id)
	if err != nil {
		h.handleDatasetError(w, r, id, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   stats,
	})
}

// SummarizeDataset handles GET /api/datasets/{id}/summary
func (h *DatasetHandler) SummarizeDataset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := datasetID(r)

	view, ok := h.queryParams.ValidateEnum(w, r, "view", []string{domain.ViewRaw, domain.ViewCleaned}, "")
	if !ok {
		return
	}

	summaries, err := h.service.Summarize(ctx, id, view)
	if err != nil {
		h.handleDatasetError(w, r, id, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summaries,
		"count":  len(summaries),
	})
}

// ExportDataset handles GET /api/datasets/{id}/export
func (h *DatasetHandler) ExportDataset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := datasetID(r)
	reqID := middleware.GetReqID(ctx)

	view, ok := h.queryParams.ValidateEnum(w, r, "view", []string{domain.ViewRaw, domain.ViewCleaned}, "")
	if !ok {
		return
	}
	format, ok := h.queryParams.ValidateEnum(w, r, "format", []string{domain.FormatCSV, domain.FormatXLSX}, domain.FormatCSV)
	if !ok {
		return
	}

	result, err := h.service.Export(ctx, id, view, format)
	if err != nil {
		h.handleDatasetError(w, r, id, err)
		return
	}

	h.logger.InfoContext(ctx, "dataset exported",
		slog.Int64("dataset_id", id),
		slog.String("format", format),
		slog.Int("bytes", len(result.Data)),
		slog.String("request_id", reqID))

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Write(result.Data)
}

// ReportDataset handles GET /api/datasets/{id}/report
func (h *DatasetHandler) ReportDataset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := datasetID(r)

	report, err := h.service.Report(ctx, id)
	if err != nil {
		h.handleDatasetError(w, r, id, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(report)))
	w.Write(report)
}

// handleDatasetError maps service read errors shared by the table endpoints
func (h *DatasetHandler) handleDatasetError(w http.ResponseWriter, r *http.Request, id int64, err error) {
	switch {
	case errors.Is(err, services.ErrDatasetNotFound):
		h.errorHandler.HandleError(w, r, apierrors.DatasetNotFoundError(id))
	case errors.Is(err, services.ErrDatasetNotProcessed):
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotProcessed)
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}
