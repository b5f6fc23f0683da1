package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/adapter/persistence"
	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/domain"
	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/usecase"
	"github.com/hx-natthawat/poc-ai-incident-document-generator/pkg/response"
)

// ReportGenerator is what the handler needs from the report pipeline
type ReportGenerator interface {
	Generate(ctx context.Context, req usecase.ReportRequest) (*usecase.ReportResult, error)
	ListRuns(ctx context.Context, limit int) ([]*domain.ReportRun, error)
	FindRun(ctx context.Context, id string) (*domain.ReportRun, error)
}

// ReportHandler serves the report generation API
type ReportHandler struct {
	reports ReportGenerator
	logger  *logrus.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports ReportGenerator, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

// RegisterRoutes registers the report routes on the router
func (h *ReportHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/reports", h.GenerateReport).Methods("POST")
	router.HandleFunc("/api/v1/reports", h.ListReports).Methods("GET")
	router.HandleFunc("/api/v1/reports/{id}/download", h.DownloadReport).Methods("GET")
	router.HandleFunc("/api/v1/sample-data", h.SampleData).Methods("GET")
}

type generateReportRequest struct {
	Incidents  []map[string]any `json:"incidents"`
	Title      string           `json:"title,omitempty"`
	Format     string           `json:"format,omitempty"`
	Stylesheet string           `json:"stylesheet,omitempty"`
}

type generateReportResponse struct {
	RunID      string   `json:"run_id"`
	Title      string   `json:"title"`
	Format     string   `json:"format"`
	OutputPath string   `json:"output_path"`
	Markdown   string   `json:"markdown"`
	Warnings   []string `json:"warnings,omitempty"`
}

// GenerateReport handles POST /api/v1/reports
func (h *ReportHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var req generateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.reports.Generate(r.Context(), usecase.ReportRequest{
		Incidents:  req.Incidents,
		Title:      req.Title,
		Format:     req.Format,
		Stylesheet: req.Stylesheet,
	})
	if err != nil {
		var schemaErr *domain.SchemaError
		var formatErr *domain.FormatError
		switch {
		case errors.As(err, &schemaErr):
			response.UnprocessableEntity(w, schemaErr.Error())
		case errors.As(err, &formatErr):
			response.UnprocessableEntity(w, formatErr.Error())
		default:
			h.logger.WithError(err).Error("Failed to generate report")
			response.InternalServerError(w, "Failed to generate report")
		}
		return
	}

	warnings := make([]string, 0, len(result.Warnings))
	for _, warning := range result.Warnings {
		warnings = append(warnings, warning.String())
	}

	response.Success(w, http.StatusCreated, "Report generated successfully", generateReportResponse{
		RunID:      result.RunID,
		Title:      result.Document.Title,
		Format:     result.Format,
		OutputPath: result.OutputPath,
		Markdown:   result.Markdown,
		Warnings:   warnings,
	})
}

// ListReports handles GET /api/v1/reports
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	runs, err := h.reports.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list report runs")
		response.InternalServerError(w, "Failed to list reports")
		return
	}

	response.Success(w, http.StatusOK, "Reports retrieved successfully", runs)
}

// DownloadReport handles GET /api/v1/reports/{id}/download
func (h *ReportHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	run, err := h.reports.FindRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, persistence.ErrRunNotFound) {
			response.NotFound(w, "Report not found")
			return
		}
		h.logger.WithError(err).WithField("run_id", id).Error("Failed to look up report run")
		response.InternalServerError(w, "Failed to look up report")
		return
	}

	w.Header().Set("Content-Disposition", "attachment")
	http.ServeFile(w, r, run.OutputPath)
}

// SampleData handles GET /api/v1/sample-data, returning a batch callers can
// POST back to try the pipeline
func (h *ReportHandler) SampleData(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Sample data retrieved successfully", map[string]any{
		"incidents": sampleIncidents,
	})
}

var sampleIncidents = []map[string]any{
	{
		"id":          "INC-001",
		"title":       "Email server outage",
		"priority":    "High",
		"department":  "IT",
		"category":    "Infrastructure",
		"status":      "Resolved",
		"created_at":  "2024-01-15T09:30:00Z",
		"resolved_at": "2024-01-15T14:45:00Z",
		"sla_status":  "Within SLA",
	},
	{
		"id":          "INC-002",
		"title":       "VPN connection failures",
		"priority":    "High",
		"department":  "IT",
		"category":    "Network",
		"status":      "Resolved",
		"created_at":  "2024-01-16T11:00:00Z",
		"resolved_at": "2024-01-17T10:30:00Z",
		"sla_status":  "Breached",
	},
	{
		"id":          "INC-003",
		"title":       "Payroll report discrepancy",
		"priority":    "Medium",
		"department":  "Finance",
		"category":    "Application",
		"status":      "Resolved",
		"created_at":  "2024-01-18T08:15:00Z",
		"resolved_at": "2024-01-18T16:00:00Z",
		"sla_status":  "Within SLA",
	},
	{
		"id":         "INC-004",
		"title":      "Printer offline on floor 3",
		"priority":   "Low",
		"department": "Facilities",
		"category":   "Hardware",
		"status":     "Unresolved",
		"created_at": "2024-01-19T13:20:00Z",
		"sla_status": "Within SLA",
	},
	{
		"id":         "INC-005",
		"title":      "CRM login errors",
		"priority":   "Medium",
		"department": "Sales",
		"category":   "Application",
		"status":     "Unresolved",
		"created_at": "2024-01-20T10:05:00Z",
		"sla_status": "Breached",
	},
	{
		"id":          "INC-006",
		"title":       "Database performance degradation",
		"priority":    "High",
		"department":  "IT",
		"category":    "Infrastructure",
		"status":      "Resolved",
		"created_at":  "2024-01-21T07:45:00Z",
		"resolved_at": "2024-01-21T12:15:00Z",
		"sla_status":  "Within SLA",
	},
}
