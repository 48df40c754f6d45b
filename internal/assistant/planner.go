package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sashasgithome/finance-bot-test/internal/llm"
	"github.com/sashasgithome/finance-bot-test/internal/models"
	"github.com/sashasgithome/finance-bot-test/internal/taxonomy"
)

const dateLayout = "2006-01-02"

// Planner translates a free-text query plus the session taxonomy into a
// FilterSpec. Planning never fails the turn: every recognized failure path
// returns the fail-open default spec so a bad plan degrades to "show
// everything" instead of blocking the conversation.
type Planner struct {
	llm    llm.Client
	now    func() time.Time
	logger *zap.Logger
}

func NewPlanner(client llm.Client, logger *zap.Logger) *Planner {
	return &Planner{llm: client, now: time.Now, logger: logger}
}

// planResponse is the wire shape the model is instructed to produce.
type planResponse struct {
	Operation   string   `json:"operation"`
	CategoryID  *int     `json:"category_id"`
	SearchTerms []string `json:"search_terms"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
}

// Plan builds the filter specification for one query.
func (p *Planner) Plan(ctx context.Context, query string, tax taxonomy.Taxonomy) models.FilterSpec {
	today := p.now()

	prompt := fmt.Sprintf(`CONTEXT:
Today is %s. You must convert the user query into a JSON object for filtering a transaction table.
CATEGORIES: %s
USER QUERY: %s

TASK: Translate the user query into the following parameters.
- operation: one of "sum", "count", "max", or "list".
--- Example: "sum" for total spending, "count" for number of transactions, "max" for the largest transaction.
- category_id: The numerical Category ID from the CATEGORIES list, must be an integer. Choose closest related.
- search_terms: A list of keywords to search for, must not be empty.
--- if query not in English, adjust to English unless for institution / brand names.
--- add terms from USER QUERY that relate to merchants, brands, or spending types.
--- add RELEVANT words from the CATEGORIES list that definitely relates and can help answer user query.
- start_date: The start date in "YYYY-MM-DD" format, default to one year ago if not specified.
- end_date: The end date in "YYYY-MM-DD" format, default to today if not specified.

JSON SCHEMA (English language only):
{
    "operation": "sum" | "count" | "max" | "list",
    "category_id": int | null,
    "search_terms": [string] | [],
    "start_date": "YYYY-MM-DD",
    "end_date": "YYYY-MM-DD"
}`, today.Format(dateLayout), tax.Text, query)

	response, err := p.llm.Invoke(ctx, prompt)
	if err != nil {
		p.logger.Warn("planner collaborator failed, falling back to default spec",
			zap.Error(err), zap.String("query", query))
		return models.DefaultFilterSpec()
	}

	clean := stripFences(response)
	if clean == "" {
		p.logger.Warn("planner returned empty response, falling back to default spec",
			zap.String("query", query))
		return models.DefaultFilterSpec()
	}

	var parsed planResponse
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		p.logger.Warn("planner returned unparsable JSON, falling back to default spec",
			zap.Error(err), zap.String("response", clean))
		return models.DefaultFilterSpec()
	}

	return p.toSpec(parsed, tax, today)
}

// toSpec normalizes the wire shape into a valid FilterSpec.
func (p *Planner) toSpec(parsed planResponse, tax taxonomy.Taxonomy, today time.Time) models.FilterSpec {
	spec := models.FilterSpec{Operation: normalizeOperation(parsed.Operation)}

	if parsed.CategoryID != nil {
		if tax.Has(*parsed.CategoryID) {
			id := *parsed.CategoryID
			spec.CategoryID = &id
		} else {
			p.logger.Warn("planner chose unknown category, dropping it",
				zap.Int("category_id", *parsed.CategoryID))
		}
	}

	for _, term := range parsed.SearchTerms {
		if term = strings.TrimSpace(term); term != "" {
			spec.SearchTerms = append(spec.SearchTerms, term)
		}
	}

	start, startErr := time.Parse(dateLayout, parsed.StartDate)
	end, endErr := time.Parse(dateLayout, parsed.EndDate)
	switch {
	case parsed.StartDate == "" && parsed.EndDate == "":
		// Default window: the past year up to today.
		defaultStart := today.AddDate(-1, 0, 0)
		spec.StartDate = &defaultStart
		endCopy := today
		spec.EndDate = &endCopy
	case startErr != nil || endErr != nil:
		// An unparseable bound drops the date stage entirely.
		p.logger.Warn("planner returned unparsable dates, dropping date bounds",
			zap.String("start_date", parsed.StartDate), zap.String("end_date", parsed.EndDate))
	default:
		if end.Before(start) {
			start, end = end, start
		}
		spec.StartDate = &start
		spec.EndDate = &end
	}
	return spec
}

func normalizeOperation(op string) string {
	switch strings.ToLower(strings.TrimSpace(op)) {
	case models.OperationSum:
		return models.OperationSum
	case models.OperationCount:
		return models.OperationCount
	case models.OperationMax:
		return models.OperationMax
	default:
		return models.OperationList
	}
}

// stripFences removes markdown code-fence wrapping the model tends to add
// around JSON.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
