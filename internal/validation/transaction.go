package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/north212wangbo/portfolio-gains/internal/api/request"
	"github.com/north212wangbo/portfolio-gains/internal/ingest"
)

// ValidateCreateTransaction validates a manually entered transaction.
//
// Required fields:
//   - symbol: non-blank after trimming, without commas or double quotes
//   - shares: present, finite and non-zero (negative records a sale)
//   - purchasePrice: present, finite and not negative
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	switch {
	case strings.TrimSpace(req.Symbol) == "":
		errors["symbol"] = "symbol is required"
	case !ingest.ValidSymbol(ingest.NormalizeSymbol(req.Symbol)):
		errors["symbol"] = "symbol cannot contain commas or double quotes"
	}

	switch {
	case req.Shares == nil:
		errors["shares"] = "shares is required"
	case !finite(*req.Shares):
		errors["shares"] = "shares must be a number"
	case *req.Shares == 0:
		errors["shares"] = "shares must be non-zero"
	}

	switch {
	case req.PurchasePrice == nil:
		errors["purchasePrice"] = "purchasePrice is required"
	case !finite(*req.PurchasePrice):
		errors["purchasePrice"] = "purchasePrice must be a number"
	case *req.PurchasePrice < 0:
		errors["purchasePrice"] = "purchasePrice cannot be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateReplaceTransactions validates every entry of a replace-all request.
// Field keys are prefixed with the entry index, e.g. "transactions[2].shares".
func ValidateReplaceTransactions(req request.ReplaceTransactionsRequest) error {
	errors := make(map[string]string)

	for i, tx := range req.Transactions {
		err := ValidateCreateTransaction(tx)
		if err == nil {
			continue
		}
		verr, ok := err.(*Error)
		if !ok {
			return err
		}
		for field, msg := range verr.Fields {
			errors[fmt.Sprintf("transactions[%d].%s", i, field)] = msg
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
