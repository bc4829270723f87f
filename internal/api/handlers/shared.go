package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/north212wangbo/portfolio-gains/internal/api/response"
	"github.com/north212wangbo/portfolio-gains/internal/apperrors"
	"github.com/north212wangbo/portfolio-gains/internal/validation"
)

// maxBodyBytes bounds JSON bodies and import uploads.
const maxBodyBytes = 10 << 20

// parseJSON decodes a single JSON document from the request body into T.
// Unknown fields are rejected.
func parseJSON[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return v, errors.New("request body is empty")
		}
		return v, err
	}
	if dec.More() {
		return v, errors.New("unexpected data after JSON body")
	}
	return v, nil
}

// respondServiceError maps a service error onto a status code. fallback is the message
// used for anything not recognized, which is reported as 500.
func respondServiceError(w http.ResponseWriter, err error, fallback error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		response.RespondError(w, http.StatusBadRequest, "validation failed", verr.Fields)
	case errors.Is(err, apperrors.ErrInvalidUUID), errors.Is(err, apperrors.ErrEmptyID):
		response.RespondError(w, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, apperrors.ErrEmptyImport):
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrEmptyImport.Error(), "")
	case errors.Is(err, apperrors.ErrMalformedStatement):
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrMalformedStatement.Error(), err.Error())
	case errors.Is(err, apperrors.ErrBrokerNotConfigured):
		response.RespondError(w, http.StatusServiceUnavailable, apperrors.ErrBrokerNotConfigured.Error(), "")
	case errors.Is(err, apperrors.ErrTransactionNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrTransactionNotFound.Error(), "")
	case errors.Is(err, apperrors.ErrSnapshotNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrSnapshotNotFound.Error(), "")
	default:
		response.RespondError(w, http.StatusInternalServerError, fallback.Error(), err.Error())
	}
}
