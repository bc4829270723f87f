package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/north212wangbo/portfolio-gains/internal/api/request"
	"github.com/north212wangbo/portfolio-gains/internal/apperrors"
	"github.com/north212wangbo/portfolio-gains/internal/ibkr"
	"github.com/north212wangbo/portfolio-gains/internal/ingest"
	"github.com/north212wangbo/portfolio-gains/internal/metrics"
	"github.com/north212wangbo/portfolio-gains/internal/model"
	"github.com/north212wangbo/portfolio-gains/internal/repository"
)

// sniffSize is how much of an import payload is inspected to recognize a Flex statement.
const sniffSize = 4096

// TransactionService handles the stored transaction list: manual entry, removal,
// import of raw text and export in the native layout.
type TransactionService struct {
	transactionRepo *repository.TransactionRepository
	metrics         *metrics.Metrics
	log             zerolog.Logger
}

// NewTransactionService creates a new TransactionService with the provided dependencies.
func NewTransactionService(
	transactionRepo *repository.TransactionRepository,
	m *metrics.Metrics,
	log zerolog.Logger,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		metrics:         m,
		log:             log.With().Str("component", "transactions").Logger(),
	}
}

// GetTransactions returns all transactions, oldest first.
func (s *TransactionService) GetTransactions(ctx context.Context) ([]model.Transaction, error) {
	return s.transactionRepo.List(ctx)
}

// CreateTransaction appends one validated manual entry. The symbol is normalized the same
// way imported rows are.
func (s *TransactionService) CreateTransaction(ctx context.Context, req request.CreateTransactionRequest) (model.Transaction, error) {
	stored, err := s.transactionRepo.Append(ctx, []model.Transaction{toTransaction(req)})
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to create transaction: %w", err)
	}

	tx := stored[0]
	s.log.Info().
		Str("id", tx.ID).
		Int64("seq", tx.Seq).
		Str("symbol", tx.Symbol).
		Float64("shares", tx.Shares).
		Msg("transaction added")
	return tx, nil
}

// ReplaceTransactions overwrites the stored list with the validated entries, in order.
func (s *TransactionService) ReplaceTransactions(ctx context.Context, req request.ReplaceTransactionsRequest) ([]model.Transaction, error) {
	txs := make([]model.Transaction, len(req.Transactions))
	for i, r := range req.Transactions {
		txs[i] = toTransaction(r)
	}

	previous, err := s.transactionRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	stored, err := s.transactionRepo.ReplaceAll(ctx, txs)
	if err != nil {
		return nil, fmt.Errorf("failed to replace transactions: %w", err)
	}

	s.log.Info().Int("previous", previous).Int("count", len(stored)).Msg("transactions replaced")
	return stored, nil
}

// DeleteTransaction removes one transaction by ID.
// Returns apperrors.ErrTransactionNotFound if it does not exist.
func (s *TransactionService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.transactionRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("id", id).Msg("transaction removed")
	return nil
}

// ImportTransactions normalizes an uploaded payload and appends the recognized rows after
// the stored ones. The payload is delimited text in any known layout, or a Flex statement.
// Unreadable rows are skipped and counted. A payload without a single usable row returns
// apperrors.ErrEmptyImport and stores nothing.
func (s *TransactionService) ImportTransactions(ctx context.Context, r io.Reader) (model.ImportResult, error) {
	br := bufio.NewReaderSize(r, sniffSize)
	head, err := br.Peek(sniffSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return model.ImportResult{}, fmt.Errorf("failed to read import payload: %w", err)
	}

	var parsed ingest.Result
	if ibkr.LooksLikeFlex(head) {
		data, err := io.ReadAll(br)
		if err != nil {
			return model.ImportResult{}, fmt.Errorf("failed to read import payload: %w", err)
		}
		if parsed, err = ibkr.ParseStatement(data); err != nil {
			return model.ImportResult{}, err
		}
	} else if parsed, err = ingest.ParseReader(br); err != nil {
		return model.ImportResult{}, err
	}
	return s.ImportParsed(ctx, parsed)
}

// ImportParsed appends already normalized transactions, keeping their relative order.
func (s *TransactionService) ImportParsed(ctx context.Context, parsed ingest.Result) (model.ImportResult, error) {
	result := model.ImportResult{
		Rows:    parsed.Rows,
		Skipped: parsed.Skipped,
	}
	if s.metrics != nil {
		s.metrics.RowsSkipped.Add(float64(parsed.Skipped))
	}
	if parsed.Skipped > 0 {
		s.log.Debug().Int("skipped", parsed.Skipped).Int("rows", parsed.Rows).Msg("import rows skipped")
	}

	if len(parsed.Transactions) == 0 {
		return result, apperrors.ErrEmptyImport
	}

	// Seq from the parser only orders this batch; the store assigns the final one.
	stored, err := s.transactionRepo.Append(ctx, parsed.Transactions)
	if err != nil {
		return model.ImportResult{}, fmt.Errorf("failed to store imported transactions: %w", err)
	}

	result.Imported = len(stored)
	result.Transactions = stored
	if s.metrics != nil {
		s.metrics.RowsImported.Add(float64(len(stored)))
	}

	s.log.Info().
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Msg("transactions imported")
	return result, nil
}

// ExportTransactions writes every stored transaction as a native "symbol,shares,price" row.
func (s *TransactionService) ExportTransactions(ctx context.Context, w io.Writer) error {
	txs, err := s.transactionRepo.List(ctx)
	if err != nil {
		return err
	}
	return ingest.Export(w, txs)
}

func toTransaction(req request.CreateTransactionRequest) model.Transaction {
	return model.Transaction{
		Symbol:        ingest.NormalizeSymbol(req.Symbol),
		Shares:        *req.Shares,
		PurchasePrice: *req.PurchasePrice,
	}
}
