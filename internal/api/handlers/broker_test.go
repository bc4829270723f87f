package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/north212wangbo/portfolio-gains/internal/ibkr"
	"github.com/north212wangbo/portfolio-gains/internal/model"
	"github.com/north212wangbo/portfolio-gains/internal/service"
	"github.com/north212wangbo/portfolio-gains/internal/testutil"
)

type stubFetcher struct {
	statement ibkr.FlexQueryResponse
}

func (s stubFetcher) FetchStatement(context.Context, string, int) (ibkr.FlexQueryResponse, []byte, error) {
	return s.statement, nil, nil
}

func TestBrokerHandler_ImportStatement(t *testing.T) {
	t.Run("returns 503 when not configured", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := service.NewBrokerService(nil, "", 0, testutil.NewTestTransactionService(t, db), testutil.TestLogger())

		w := httptest.NewRecorder()
		NewBrokerHandler(svc).ImportStatement(w, httptest.NewRequest(http.MethodPost, "/api/transactions/import/ibkr", nil))

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected 503, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("imports fetched trades", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		var stmt ibkr.FlexQueryResponse
		stmt.FlexStatements.FlexStatement = []ibkr.FlexStatement{{}}
		stmt.FlexStatements.FlexStatement[0].Trades.Trade = []ibkr.Trade{
			{AssetCategory: "STK", Symbol: "VT", Quantity: 2, TradePrice: 100, TradeDate: "20240102", BuySell: "BUY"},
		}
		svc := service.NewBrokerService(stubFetcher{statement: stmt}, "tok", 1, testutil.NewTestTransactionService(t, db), testutil.TestLogger())

		w := httptest.NewRecorder()
		NewBrokerHandler(svc).ImportStatement(w, httptest.NewRequest(http.MethodPost, "/api/transactions/import/ibkr", nil))

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
		res := testutil.DecodeJSON[model.ImportResult](t, w.Body)
		if res.Imported != 1 {
			t.Errorf("Expected 1 imported, got %d", res.Imported)
		}
	})
}
