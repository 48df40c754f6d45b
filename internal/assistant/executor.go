package assistant

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sashasgithome/finance-bot-test/internal/ledger"
	"github.com/sashasgithome/finance-bot-test/internal/models"
)

// SampleLimit bounds how many matching rows are handed to the renderer.
const SampleLimit = 10

// sampleColumns is the reduced column set projected into the sample, in
// display order.
var sampleColumns = []string{
	ledger.ColumnDate,
	ledger.ColumnSubheader,
	ledger.ColumnDetailInformation,
	ledger.ColumnNotes,
	ledger.ColumnAmount,
	ledger.ColumnDebitCredit,
}

// Execute applies the filter specification to the customer's ledger
// snapshot and aggregates the result. It is a pure function: the ledger is
// never mutated, filtering narrows a copy in a fixed order (category, date
// range, search terms), and the same inputs always produce the same
// aggregates and sample ordering.
func Execute(profile models.CustomerProfile, led *ledger.Ledger, spec models.FilterSpec) models.QueryResult {
	matches := make([]models.Transaction, 0, len(led.Rows))
	matches = append(matches, led.Rows...)

	if spec.CategoryID != nil {
		matches = keep(matches, func(t models.Transaction) bool {
			return t.CategoryID == *spec.CategoryID
		})
	}

	if spec.StartDate != nil && spec.EndDate != nil {
		start, end := *spec.StartDate, *spec.EndDate
		matches = keep(matches, func(t models.Transaction) bool {
			return !t.Date.Before(start) && !t.Date.After(end)
		})
	}

	if terms := lowerNonEmpty(spec.SearchTerms); len(terms) > 0 {
		matches = keep(matches, func(t models.Transaction) bool {
			return matchesAnyTerm(t.Subheader, terms) || matchesAnyTerm(t.Notes, terms)
		})
	}

	// Most recent first. Stable so rows sharing a date keep ledger order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Date.After(matches[j].Date)
	})

	result := models.QueryResult{
		CustomerName: profile.Name,
		Language:     profile.Language,
		Total:        decimal.Zero,
		MaxAmount:    decimal.Zero,
		Count:        len(matches),
		Sample:       []models.SampleRecord{},
	}

	// Aggregates cover every match, not just the sample.
	for _, t := range matches {
		result.Total = result.Total.Add(t.Amount)
		if t.Amount.GreaterThan(result.MaxAmount) {
			result.MaxAmount = t.Amount
		}
	}

	limit := len(matches)
	if limit > SampleLimit {
		limit = SampleLimit
	}
	for _, t := range matches[:limit] {
		result.Sample = append(result.Sample, project(t, led))
	}
	return result
}

func keep(rows []models.Transaction, pred func(models.Transaction) bool) []models.Transaction {
	out := rows[:0]
	for _, t := range rows {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}

func lowerNonEmpty(terms []string) []string {
	var out []string
	for _, term := range terms {
		if term = strings.TrimSpace(term); term != "" {
			out = append(out, strings.ToLower(term))
		}
	}
	return out
}

// matchesAnyTerm is a case-insensitive OR over plain substring matches.
// Terms are matched one by one, never joined into a pattern, so a term
// containing pattern-control characters cannot alter matching.
func matchesAnyTerm(text string, loweredTerms []string) bool {
	if text == "" {
		return false
	}
	text = strings.ToLower(text)
	for _, term := range loweredTerms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// project reduces one transaction to the sample column set, omitting
// columns the source did not provide.
func project(t models.Transaction, led *ledger.Ledger) models.SampleRecord {
	record := models.SampleRecord{}
	for _, column := range sampleColumns {
		if !led.Has(column) {
			continue
		}
		switch column {
		case ledger.ColumnDate:
			record[column] = t.Date.Format(dateLayout)
		case ledger.ColumnSubheader:
			record[column] = t.Subheader
		case ledger.ColumnDetailInformation:
			record[column] = t.DetailInformation
		case ledger.ColumnNotes:
			record[column] = t.Notes
		case ledger.ColumnAmount:
			record[column] = t.Amount.String()
		case ledger.ColumnDebitCredit:
			record[column] = t.DebitCredit
		}
	}
	return record
}
