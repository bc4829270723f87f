package handlers

import (
	"net/http"

	"github.com/north212wangbo/portfolio-gains/internal/api/request"
	"github.com/north212wangbo/portfolio-gains/internal/api/response"
	"github.com/north212wangbo/portfolio-gains/internal/apperrors"
	"github.com/north212wangbo/portfolio-gains/internal/service"
)

// ReportHandler serves the live gain report and its stored snapshots.
type ReportHandler struct {
	reportService   *service.ReportService
	snapshotService *service.SnapshotService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *service.ReportService, snapshotService *service.SnapshotService) *ReportHandler {
	return &ReportHandler{
		reportService:   reportService,
		snapshotService: snapshotService,
	}
}

// Report handles GET requests for a report priced at current market prices.
// Symbols whose price lookup fails are returned as error rows with a 200.
//
// Endpoint: GET /api/report
// Response: 200 OK with model.PortfolioReport
// Error: 500 Internal Server Error if transactions cannot be loaded
func (h *ReportHandler) Report(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reportService.GenerateReport(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGenerateReport.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, rep)
}

// Snapshots handles GET requests for stored snapshots, newest first.
//
// Endpoint: GET /api/report/snapshots?limit=n
// Response: 200 OK with array of model.ReportSnapshot
// Error: 400 Bad Request if limit is invalid
// Error: 500 Internal Server Error if retrieval fails
func (h *ReportHandler) Snapshots(w http.ResponseWriter, r *http.Request) {
	limit, err := request.ParseSnapshotLimit(r.URL.Query().Get("limit"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	snapshots, err := h.snapshotService.GetSnapshots(r.Context(), limit)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveSnapshots.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, snapshots)
}

// LatestSnapshot handles GET requests for the newest stored snapshot.
//
// Endpoint: GET /api/report/snapshots/latest
// Response: 200 OK with model.ReportSnapshot
// Error: 404 Not Found if none has been taken yet
func (h *ReportHandler) LatestSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.snapshotService.GetLatestSnapshot(r.Context())
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveSnapshots)
		return
	}

	response.RespondJSON(w, http.StatusOK, snapshot)
}

// TakeSnapshot handles POST requests that store a snapshot immediately.
//
// Endpoint: POST /api/report/snapshots
// Response: 201 Created with model.ReportSnapshot
// Error: 500 Internal Server Error if the report or the store fails
func (h *ReportHandler) TakeSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.snapshotService.TakeSnapshot(r.Context())
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToGenerateReport)
		return
	}

	response.RespondJSON(w, http.StatusCreated, snapshot)
}
