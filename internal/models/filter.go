package models

import "time"

// Supported filter operations. The operation is advisory: sum, count and
// max are always materialized in the result, list returns everything.
const (
	OperationSum   = "sum"
	OperationCount = "count"
	OperationMax   = "max"
	OperationList  = "list"
)

// FilterSpec is the structured output of the planner: how to narrow the
// ledger for one query. Nil pointers mean "no restriction".
type FilterSpec struct {
	Operation   string     `json:"operation"`
	CategoryID  *int       `json:"category_id,omitempty"`
	SearchTerms []string   `json:"search_terms,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

// DefaultFilterSpec is the fail-open specification substituted whenever
// planning fails: list every transaction, no category, terms or date bounds.
func DefaultFilterSpec() FilterSpec {
	return FilterSpec{Operation: OperationList}
}

// SampleRecord is one sampled transaction projected to the reduced column
// set handed to the renderer. Keys are ledger column names; columns the
// source did not provide are omitted.
type SampleRecord map[string]string
