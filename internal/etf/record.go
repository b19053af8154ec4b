package etf

// PriceRecord is a successful lookup.
type PriceRecord struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	Timestamp string  `json:"timestamp"`
}

// ErrorRecord is the body returned for a failed lookup.
type ErrorRecord struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}
