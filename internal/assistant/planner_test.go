package assistant

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sashasgithome/finance-bot-test/internal/llm"
	"github.com/sashasgithome/finance-bot-test/internal/models"
	"github.com/sashasgithome/finance-bot-test/internal/taxonomy"
)

var testTaxonomy = taxonomy.Taxonomy{
	Text: "1 : Groceries (Indomaret, Alfamart)\n2 : Dining (Starbucks, KFC)",
	Categories: []models.Category{
		{ID: 1, Theme: "Groceries", Examples: []string{"Indomaret", "Alfamart"}},
		{ID: 2, Theme: "Dining", Examples: []string{"Starbucks", "KFC"}},
	},
}

func newTestPlanner(client llm.Client, today string) *Planner {
	p := NewPlanner(client, zap.NewNop())
	p.now = func() time.Time { return day(today) }
	return p
}

func TestPlanParsesResponse(t *testing.T) {
	client := llm.NewScriptedClient(`{
		"operation": "sum",
		"category_id": 2,
		"search_terms": ["starbucks", "coffee"],
		"start_date": "2024-01-01",
		"end_date": "2024-02-28"
	}`)
	p := newTestPlanner(client, "2024-03-15")

	spec := p.Plan(context.Background(), "how much on coffee?", testTaxonomy)

	if spec.Operation != models.OperationSum {
		t.Errorf("Operation = %q, want sum", spec.Operation)
	}
	if spec.CategoryID == nil || *spec.CategoryID != 2 {
		t.Errorf("CategoryID = %v, want 2", spec.CategoryID)
	}
	if !reflect.DeepEqual(spec.SearchTerms, []string{"starbucks", "coffee"}) {
		t.Errorf("SearchTerms = %v", spec.SearchTerms)
	}
	if spec.StartDate == nil || !spec.StartDate.Equal(day("2024-01-01")) {
		t.Errorf("StartDate = %v, want 2024-01-01", spec.StartDate)
	}
	if spec.EndDate == nil || !spec.EndDate.Equal(day("2024-02-28")) {
		t.Errorf("EndDate = %v, want 2024-02-28", spec.EndDate)
	}
}

func TestPlanStripsCodeFences(t *testing.T) {
	client := llm.NewScriptedClient("```json\n{\"operation\": \"count\", \"search_terms\": [], \"start_date\": \"2024-01-01\", \"end_date\": \"2024-01-31\"}\n```")
	p := newTestPlanner(client, "2024-03-15")

	spec := p.Plan(context.Background(), "how many transactions?", testTaxonomy)

	if spec.Operation != models.OperationCount {
		t.Errorf("Operation = %q, want count", spec.Operation)
	}
}

func TestPlanFailOpen(t *testing.T) {
	tests := []struct {
		name   string
		client *llm.ScriptedClient
	}{
		{"empty response", llm.NewScriptedClient("")},
		{"unparsable JSON", llm.NewScriptedClient("not json at all")},
		{"fences around nothing", llm.NewScriptedClient("```json\n```")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPlanner(tt.client, "2024-03-15")
			spec := p.Plan(context.Background(), "anything", testTaxonomy)
			if !reflect.DeepEqual(spec, models.DefaultFilterSpec()) {
				t.Errorf("spec = %+v, want fail-open default", spec)
			}
		})
	}
}

func TestPlanFailOpenOnCollaboratorError(t *testing.T) {
	client := llm.NewScriptedClient()
	client.Fail(errors.New("timeout"))
	p := newTestPlanner(client, "2024-03-15")

	spec := p.Plan(context.Background(), "anything", testTaxonomy)

	if !reflect.DeepEqual(spec, models.DefaultFilterSpec()) {
		t.Errorf("spec = %+v, want fail-open default", spec)
	}
}

func TestPlanDefaultDateWindow(t *testing.T) {
	client := llm.NewScriptedClient(`{"operation": "list", "search_terms": []}`)
	p := newTestPlanner(client, "2024-03-15")

	spec := p.Plan(context.Background(), "list my transactions", testTaxonomy)

	if spec.StartDate == nil || !spec.StartDate.Equal(day("2023-03-15")) {
		t.Errorf("StartDate = %v, want one year before today", spec.StartDate)
	}
	if spec.EndDate == nil || !spec.EndDate.Equal(day("2024-03-15")) {
		t.Errorf("EndDate = %v, want today", spec.EndDate)
	}
}

func TestPlanDropsUnknownCategory(t *testing.T) {
	client := llm.NewScriptedClient(`{"operation": "sum", "category_id": 42, "search_terms": [], "start_date": "2024-01-01", "end_date": "2024-01-31"}`)
	p := newTestPlanner(client, "2024-03-15")

	spec := p.Plan(context.Background(), "spending?", testTaxonomy)

	if spec.CategoryID != nil {
		t.Errorf("CategoryID = %v, want nil for an ID outside the taxonomy", spec.CategoryID)
	}
}

func TestPlanSwapsReversedDates(t *testing.T) {
	client := llm.NewScriptedClient(`{"operation": "list", "search_terms": [], "start_date": "2024-02-28", "end_date": "2024-01-01"}`)
	p := newTestPlanner(client, "2024-03-15")

	spec := p.Plan(context.Background(), "list", testTaxonomy)

	if spec.StartDate == nil || spec.EndDate == nil || spec.EndDate.Before(*spec.StartDate) {
		t.Errorf("dates not normalized: start=%v end=%v", spec.StartDate, spec.EndDate)
	}
}

func TestPlanDropsUnparsableDates(t *testing.T) {
	client := llm.NewScriptedClient(`{"operation": "list", "search_terms": [], "start_date": "last month", "end_date": "2024-01-31"}`)
	p := newTestPlanner(client, "2024-03-15")

	spec := p.Plan(context.Background(), "list", testTaxonomy)

	if spec.StartDate != nil || spec.EndDate != nil {
		t.Errorf("dates = %v..%v, want no bounds when unparsable", spec.StartDate, spec.EndDate)
	}
}

func TestPlanNormalizesOperation(t *testing.T) {
	client := llm.NewScriptedClient(`{"operation": "average", "search_terms": [], "start_date": "2024-01-01", "end_date": "2024-01-31"}`)
	p := newTestPlanner(client, "2024-03-15")

	spec := p.Plan(context.Background(), "average?", testTaxonomy)

	if spec.Operation != models.OperationList {
		t.Errorf("Operation = %q, want list for unknown operation", spec.Operation)
	}
}
