package models

import "github.com/shopspring/decimal"

// QueryResult is the grounding context handed to the renderer: the
// aggregate over every matching row plus a bounded, most-recent-first
// sample. The renderer must never see ledger rows outside the sample.
type QueryResult struct {
	CustomerName string          `json:"customer_name"`
	Language     string          `json:"language"`
	Total        decimal.Decimal `json:"total"`
	Count        int             `json:"count"`
	MaxAmount    decimal.Decimal `json:"max_amount"`
	Sample       []SampleRecord  `json:"sample"`
}
