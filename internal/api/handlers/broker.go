package handlers

import (
	"net/http"

	"github.com/north212wangbo/portfolio-gains/internal/api/response"
	"github.com/north212wangbo/portfolio-gains/internal/apperrors"
	"github.com/north212wangbo/portfolio-gains/internal/service"
)

// BrokerHandler imports trades directly from the broker.
type BrokerHandler struct {
	brokerService *service.BrokerService
}

// NewBrokerHandler creates a new BrokerHandler.
func NewBrokerHandler(brokerService *service.BrokerService) *BrokerHandler {
	return &BrokerHandler{brokerService: brokerService}
}

// ImportStatement handles POST requests that fetch the configured Flex query and
// append its trades.
//
// Endpoint: POST /api/transactions/import/ibkr
// Response: 201 Created with model.ImportResult
// Error: 400 Bad Request if the statement holds no usable trade
// Error: 503 Service Unavailable if broker credentials are not configured
// Error: 500 Internal Server Error if fetching or storing fails
func (h *BrokerHandler) ImportStatement(w http.ResponseWriter, r *http.Request) {
	result, err := h.brokerService.ImportStatement(r.Context())
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToImportTransactions)
		return
	}

	response.RespondJSON(w, http.StatusCreated, result)
}
