package ibkr

import (
	"encoding/xml"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/north212wangbo/portfolio-gains/internal/apperrors"
	"github.com/north212wangbo/portfolio-gains/internal/ingest"
	"github.com/north212wangbo/portfolio-gains/internal/model"
)

const stockCategory = "STK"

// LooksLikeFlex reports whether data is a Flex statement rather than delimited text.
func LooksLikeFlex(data []byte) bool {
	s := strings.TrimSpace(string(data))
	return strings.HasPrefix(s, "<") && strings.Contains(s, "<FlexQueryResponse")
}

// ParseStatement decodes a Flex statement and converts its trades.
func ParseStatement(data []byte) (ingest.Result, error) {
	var resp FlexQueryResponse
	if err := xml.Unmarshal(data, &resp); err != nil {
		return ingest.Result{}, fmt.Errorf("%w: %v", apperrors.ErrMalformedStatement, err)
	}
	return Transactions(resp), nil
}

// Transactions turns the stock trades of every statement in resp into transactions,
// oldest first. Trades in other asset categories, or without a storable symbol, a quantity or a
// valid price, are counted as skipped. Seq is assigned 1..n.
func Transactions(resp FlexQueryResponse) ingest.Result {
	var trades []Trade
	for _, st := range resp.FlexStatements.FlexStatement {
		trades = append(trades, st.Trades.Trade...)
	}

	// tradeDate sorts lexically in both yyyyMMdd and yyyy-MM-dd; transactionID breaks ties.
	sort.SliceStable(trades, func(i, j int) bool {
		if trades[i].TradeDate != trades[j].TradeDate {
			return trades[i].TradeDate < trades[j].TradeDate
		}
		return trades[i].TransactionID < trades[j].TransactionID
	})

	res := ingest.Result{
		Transactions: make([]model.Transaction, 0, len(trades)),
		Rows:         len(trades),
	}
	for _, tr := range trades {
		tx, ok := toTransaction(tr)
		if !ok {
			res.Skipped++
			continue
		}
		tx.Seq = int64(len(res.Transactions) + 1)
		res.Transactions = append(res.Transactions, tx)
	}
	return res
}

func toTransaction(tr Trade) (model.Transaction, bool) {
	if tr.AssetCategory != "" && tr.AssetCategory != stockCategory {
		return model.Transaction{}, false
	}
	symbol := ingest.NormalizeSymbol(tr.Symbol)
	if !ingest.ValidSymbol(symbol) || tr.Quantity == 0 || tr.TradePrice < 0 || math.IsNaN(tr.TradePrice) {
		return model.Transaction{}, false
	}

	shares := tr.Quantity
	switch strings.ToUpper(tr.BuySell) {
	case "SELL":
		shares = -math.Abs(shares)
	case "BUY":
		shares = math.Abs(shares)
	}

	return model.Transaction{
		Symbol:        symbol,
		Shares:        shares,
		PurchasePrice: tr.TradePrice,
	}, true
}
