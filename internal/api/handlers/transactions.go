package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/north212wangbo/portfolio-gains/internal/api/request"
	"github.com/north212wangbo/portfolio-gains/internal/api/response"
	"github.com/north212wangbo/portfolio-gains/internal/apperrors"
	"github.com/north212wangbo/portfolio-gains/internal/service"
	"github.com/north212wangbo/portfolio-gains/internal/validation"
)

// TransactionHandler handles HTTP requests for transaction endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the transactionService.
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// ListTransactions handles GET requests for every stored transaction in Seq order.
//
// Endpoint: GET /api/transactions
// Response: 200 OK with array of model.Transaction
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.transactionService.GetTransactions(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransactions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// CreateTransaction handles POST requests that append one manual entry.
// Negative shares record a sale.
//
// Endpoint: POST /api/transactions
// Request Body: CreateTransactionRequest
// Response: 201 Created with model.Transaction
// Error: 400 Bad Request if the body is malformed or validation fails
// Error: 500 Internal Server Error if storing fails
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateTransactionRequest](w, r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTransaction(req); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToStoreTransactions)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToStoreTransactions)
		return
	}

	response.RespondJSON(w, http.StatusCreated, transaction)
}

// ReplaceTransactions handles PUT requests that overwrite the whole list.
//
// Endpoint: PUT /api/transactions
// Request Body: ReplaceTransactionsRequest
// Response: 200 OK with the stored array of model.Transaction
// Error: 400 Bad Request if the body is malformed or any entry fails validation
// Error: 500 Internal Server Error if storing fails
func (h *TransactionHandler) ReplaceTransactions(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ReplaceTransactionsRequest](w, r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateReplaceTransactions(req); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToStoreTransactions)
		return
	}

	transactions, err := h.transactionService.ReplaceTransactions(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToStoreTransactions)
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// DeleteTransaction handles DELETE requests for one transaction.
//
// Endpoint: DELETE /api/transactions/{id}
// Response: 204 No Content
// Error: 400 Bad Request if the ID is invalid (validated by middleware)
// Error: 404 Not Found if the transaction does not exist
// Error: 500 Internal Server Error if deletion fails
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.transactionService.DeleteTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToDeleteTransaction)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// ImportTransactions handles POST requests carrying a pasted list or a broker statement.
// The body is read as text, or from the "file" field of a multipart form.
//
// Endpoint: POST /api/transactions/import
// Response: 201 Created with model.ImportResult
// Error: 400 Bad Request if no row could be recognized
// Error: 500 Internal Server Error if storing fails
func (h *TransactionHandler) ImportTransactions(w http.ResponseWriter, r *http.Request) {
	body, err := importBody(w, r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid import body", err.Error())
		return
	}

	result, err := h.transactionService.ImportTransactions(r.Context(), body)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmptyImport) {
			response.RespondJSON(w, http.StatusBadRequest, response.ErrorResponse{
				Error:   err.Error(),
				Details: result,
			})
			return
		}
		respondServiceError(w, err, apperrors.ErrFailedToImportTransactions)
		return
	}

	response.RespondJSON(w, http.StatusCreated, result)
}

// ExportTransactions handles GET requests for the stored list as native text,
// one "symbol,shares,price" row per transaction.
//
// Endpoint: GET /api/transactions/export
// Response: 200 OK with text/csv attachment
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.transactionService.ExportTransactions(r.Context(), &buf); err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToExportTransactions.Error(), err.Error())
		return
	}

	filename := fmt.Sprintf("transactions-%s.csv", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // the status line is already sent
	buf.WriteTo(w)
}

func importBody(w http.ResponseWriter, r *http.Request) (io.Reader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, nil
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}
