package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/sashasgithome/finance-bot-test/internal/models"
)

// Canonical column names, after header normalization.
const (
	ColumnCIF               = "cif"
	ColumnDate              = "trx_date"
	ColumnCategory          = "category_by_system"
	ColumnSubheader         = "subheader"
	ColumnDetailInformation = "detail_information"
	ColumnNotes             = "notes"
	ColumnAmount            = "amount"
	ColumnDebitCredit       = "debit_credit"
)

// Source loads transactions and customer profiles from a backing store.
type Source interface {
	Transactions(ctx context.Context) (*Ledger, error)
	Profile(ctx context.Context, cif string) (models.CustomerProfile, error)
	Close() error
}

// LoadError reports an unreadable or malformed transaction source. It is
// fatal for the session: the assistant has no function without its ledger.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("ledger: loading %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Ledger is the immutable in-memory table of transaction rows. Columns
// records which of the canonical columns the source actually provided;
// availability is data-dependent, not an error.
type Ledger struct {
	Rows    []models.Transaction
	Columns map[string]bool
}

// Has reports whether the source provided the given column.
func (l *Ledger) Has(column string) bool {
	return l.Columns[column]
}

// FilterByCustomer returns the subset of rows belonging to the given CIF.
// CIFs are compared as text so a numeric identifier in the source still
// matches a string identifier typed by the user. An empty result is a
// valid state, distinct from a load failure.
func (l *Ledger) FilterByCustomer(cif string) *Ledger {
	out := &Ledger{Columns: l.Columns}
	for _, row := range l.Rows {
		if row.CIF == cif {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// CategoryIDs returns the distinct category identifiers present, in
// ascending order.
func (l *Ledger) CategoryIDs() []int {
	seen := make(map[int]bool)
	var ids []int
	for _, row := range l.Rows {
		if !seen[row.CategoryID] {
			seen[row.CategoryID] = true
			ids = append(ids, row.CategoryID)
		}
	}
	sort.Ints(ids)
	return ids
}
