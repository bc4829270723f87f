package apperrors

import "errors"

// Domain entity errors represent missing entities in the system.
var (
	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrSnapshotNotFound indicates that no report snapshot has been stored yet.
	ErrSnapshotNotFound = errors.New("report snapshot not found")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrMalformedStatement indicates that an uploaded broker statement could not be decoded.
	ErrMalformedStatement = errors.New("malformed broker statement")

	// ErrEmptyImport indicates that an import payload contained no usable rows.
	ErrEmptyImport = errors.New("no transactions recognized in import")
)

// External collaborator errors.
var (
	// ErrPriceUnavailable indicates the price provider returned no usable quote for a symbol.
	ErrPriceUnavailable = errors.New("price unavailable")

	// ErrBrokerNotConfigured indicates that broker import credentials are not set.
	ErrBrokerNotConfigured = errors.New("broker import is not configured")

	// ErrProviderUnavailable indicates the price provider is rejecting calls (circuit open).
	ErrProviderUnavailable = errors.New("price provider unavailable")
)

// Operation failure errors represent system-level failures when retrieving or storing data.
var (
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToStoreTransactions    = errors.New("failed to store transactions")
	ErrFailedToDeleteTransaction    = errors.New("failed to delete transaction")
	ErrFailedToImportTransactions   = errors.New("failed to import transactions")
	ErrFailedToExportTransactions   = errors.New("failed to export transactions")
	ErrFailedToGenerateReport       = errors.New("failed to generate report")
	ErrFailedToRetrieveSnapshots    = errors.New("failed to retrieve report snapshots")
)
