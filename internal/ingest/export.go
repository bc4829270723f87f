package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/north212wangbo/portfolio-gains/internal/model"
)

// FormatRow renders a transaction in the native layout: symbol,shares,purchasePrice.
func FormatRow(tx model.Transaction) string {
	return tx.Symbol + "," +
		strconv.FormatFloat(tx.Shares, 'f', -1, 64) + "," +
		strconv.FormatFloat(tx.PurchasePrice, 'f', -1, 64)
}

// Export writes one native row per transaction, no header and no quoting.
func Export(w io.Writer, txs []model.Transaction) error {
	bw := bufio.NewWriter(w)
	for _, tx := range txs {
		if _, err := bw.WriteString(FormatRow(tx) + "\n"); err != nil {
			return fmt.Errorf("failed to write export row: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}
	return nil
}
