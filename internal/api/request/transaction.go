package request

// CreateTransactionRequest is a manually entered transaction. Pointers distinguish a missing
// field from an explicit zero.
type CreateTransactionRequest struct {
	Symbol        string   `json:"symbol"`
	Shares        *float64 `json:"shares"`
	PurchasePrice *float64 `json:"purchasePrice"`
}

// ReplaceTransactionsRequest overwrites the whole transaction list, oldest first.
type ReplaceTransactionsRequest struct {
	Transactions []CreateTransactionRequest `json:"transactions"`
}
