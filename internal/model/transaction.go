package model

// Transaction represents a single buy or sell event for a symbol.
// Positive Shares is a buy, negative Shares is a sale; the magnitude is the quantity.
// Seq carries the chronological position of the transaction: lower Seq happened first.
type Transaction struct {
	ID            string  `json:"id,omitempty"`
	Seq           int64   `json:"seq"`
	Symbol        string  `json:"symbol"`
	Shares        float64 `json:"shares"`
	PurchasePrice float64 `json:"purchasePrice"`
}

// IsBuy reports whether the transaction adds shares.
func (t Transaction) IsBuy() bool { return t.Shares > 0 }

// IsSell reports whether the transaction removes shares.
func (t Transaction) IsSell() bool { return t.Shares < 0 }

// ImportResult summarizes an import of raw transaction text.
type ImportResult struct {
	Rows         int           `json:"rows"`
	Imported     int           `json:"imported"`
	Skipped      int           `json:"skipped"`
	Transactions []Transaction `json:"transactions"`
}
