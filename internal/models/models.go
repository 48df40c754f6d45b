package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single ledger row for one customer.
type Transaction struct {
	CIF               string          `json:"cif"`
	Date              time.Time       `json:"trx_date"`
	CategoryID        int             `json:"category_by_system"`
	Subheader         string          `json:"subheader"`
	DetailInformation string          `json:"detail_information"`
	Notes             string          `json:"notes"`
	Amount            decimal.Decimal `json:"amount"`
	DebitCredit       string          `json:"debit_credit"`
}

// CustomerProfile holds the display name and language preference for a CIF.
type CustomerProfile struct {
	CIF      string `json:"cif"`
	Name     string `json:"customer_name"`
	Language string `json:"language"`
}

// Category is one entry of the per-customer taxonomy: a numeric ID, a
// one-word spending theme and up to six representative merchants or keywords.
type Category struct {
	ID       int      `json:"id"`
	Theme    string   `json:"theme"`
	Examples []string `json:"examples"`
}

// Message is one turn of the conversation history.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
