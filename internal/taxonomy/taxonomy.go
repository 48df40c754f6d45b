package taxonomy

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sashasgithome/finance-bot-test/internal/ledger"
	"github.com/sashasgithome/finance-bot-test/internal/llm"
	"github.com/sashasgithome/finance-bot-test/internal/models"
)

const maxExamples = 6

// Taxonomy is the per-customer category mapping: the display text shown to
// the customer plus the parsed categories the planner validates against.
// Derived once per session from the customer's own rows.
type Taxonomy struct {
	Text       string
	Categories []models.Category
}

// Has reports whether the given category identifier exists in the taxonomy.
func (t Taxonomy) Has(id int) bool {
	for _, c := range t.Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Generator derives a taxonomy from a customer's ledger via the language
// model.
type Generator struct {
	llm    llm.Client
	logger *zap.Logger
}

func NewGenerator(client llm.Client, logger *zap.Logger) *Generator {
	return &Generator{llm: client, logger: logger}
}

// Lines like "2 : Dining (Starbucks, McDonalds, KFC)".
var lineRe = regexp.MustCompile(`^\s*(\d+)\s*:\s*([^(]+?)\s*(?:\(([^)]*)\))?\s*$`)

// Generate asks the model for one theme word plus representative examples
// per category ID. A collaborator failure is fatal: without the taxonomy
// the planner has nothing to select categories from.
func (g *Generator) Generate(ctx context.Context, led *ledger.Ledger) (Taxonomy, error) {
	prompt := buildPrompt(BuildDescriptors(led))

	response, err := g.llm.Invoke(ctx, prompt)
	if err != nil {
		return Taxonomy{}, fmt.Errorf("taxonomy: generating categories: %w", err)
	}

	tax := Taxonomy{Text: response, Categories: Parse(response)}
	if len(tax.Categories) == 0 {
		// Unparseable model output: keep the display text but derive the
		// category IDs from the ledger so planner validation stays meaningful.
		g.logger.Warn("taxonomy response did not parse, deriving IDs from ledger",
			zap.String("response", response))
		for _, id := range led.CategoryIDs() {
			tax.Categories = append(tax.Categories, models.Category{ID: id})
		}
	}
	return tax, nil
}

func buildPrompt(descriptors string) string {
	return fmt.Sprintf(`CONTEXT:
You are a Financial Data Analyst specializing in categorizing banking transaction patterns.
There is a list of unique 'Subheaders', 'Notes', and 'Detail Information' grouped by a numerical 'Category ID'.
INPUT DATA: %s

TASK:
1. Identify one-word representing high-level spending theme for each Category ID (e.g., Dining, Groceries, Education).
2. List most common merchants, brands, or keywords found in that category, maximum of %d.
3. Return the results in a strict format below.

FORMAT OF STRING OUTPUT SHOULD ONLY BE :
[CATEGORY NUMBER] : [MAIN TOPIC] ([EXAMPLE1, EXAMPLE2, EXAMPLE3, EXAMPLE4, EXAMPLE5])

EXAMPLE OUTPUT:
1 : Groceries (Indomaret, Alfamart, Carrefour, Giant, Superindo)
2 : Dining (Starbucks, McDonalds, Pizza Hut, KFC, Burger King)`, descriptors, maxExamples)
}

// Parse extracts categories from the model's line-oriented output. Lines
// that do not match the expected shape are skipped.
func Parse(text string) []models.Category {
	var categories []models.Category
	for _, line := range strings.Split(text, "\n") {
		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		category := models.Category{ID: id, Theme: strings.TrimSpace(m[2])}
		if m[3] != "" {
			for _, example := range strings.Split(m[3], ",") {
				example = strings.TrimSpace(example)
				if example == "" {
					continue
				}
				category.Examples = append(category.Examples, example)
				if len(category.Examples) == maxExamples {
					break
				}
			}
		}
		categories = append(categories, category)
	}
	return categories
}
