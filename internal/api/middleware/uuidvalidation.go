// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/north212wangbo/portfolio-gains/internal/api/response"
	"github.com/north212wangbo/portfolio-gains/internal/validation"
)

// ValidateIDMiddleware validates that the id URL parameter is present and is a valid UUID.
// Returns 400 Bad Request otherwise.
//
// Example usage in router:
//
//	r.Route("/{id}", func(r chi.Router) {
//	    r.Use(middleware.ValidateIDMiddleware)
//	    r.Delete("/", handler.DeleteTransaction)
//	})
func ValidateIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := validation.ValidateUUID(chi.URLParam(r, "id")); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid transaction ID", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
