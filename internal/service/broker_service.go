package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/north212wangbo/portfolio-gains/internal/apperrors"
	"github.com/north212wangbo/portfolio-gains/internal/ibkr"
	"github.com/north212wangbo/portfolio-gains/internal/model"
)

// StatementFetcher retrieves a generated Flex statement.
type StatementFetcher interface {
	FetchStatement(ctx context.Context, token string, queryID int) (ibkr.FlexQueryResponse, []byte, error)
}

// BrokerService pulls trades straight from the broker and appends them like an upload.
type BrokerService struct {
	fetcher            StatementFetcher
	token              string
	queryID            int
	transactionService *TransactionService
	log                zerolog.Logger
}

// NewBrokerService creates a BrokerService. A nil fetcher or empty credentials leave
// it disabled.
func NewBrokerService(
	fetcher StatementFetcher,
	token string,
	queryID int,
	transactionService *TransactionService,
	log zerolog.Logger,
) *BrokerService {
	return &BrokerService{
		fetcher:            fetcher,
		token:              token,
		queryID:            queryID,
		transactionService: transactionService,
		log:                log.With().Str("component", "broker").Logger(),
	}
}

// Enabled reports whether credentials are configured.
func (s *BrokerService) Enabled() bool {
	return s.fetcher != nil && s.token != "" && s.queryID != 0
}

// ImportStatement fetches the configured Flex query and imports its trades.
// Returns apperrors.ErrBrokerNotConfigured when disabled.
func (s *BrokerService) ImportStatement(ctx context.Context) (model.ImportResult, error) {
	if !s.Enabled() {
		return model.ImportResult{}, apperrors.ErrBrokerNotConfigured
	}

	statement, _, err := s.fetcher.FetchStatement(ctx, s.token, s.queryID)
	if err != nil {
		return model.ImportResult{}, fmt.Errorf("failed to fetch broker statement: %w", err)
	}

	s.log.Info().
		Int("statements", len(statement.FlexStatements.FlexStatement)).
		Str("query", statement.QueryName).
		Msg("broker statement fetched")

	return s.transactionService.ImportParsed(ctx, ibkr.Transactions(statement))
}
