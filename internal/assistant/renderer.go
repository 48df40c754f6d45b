package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sashasgithome/finance-bot-test/internal/llm"
	"github.com/sashasgithome/finance-bot-test/internal/models"
)

// Renderer phrases the aggregate and sample into a natural-language answer
// in the customer's preferred language. Only the grounding context is
// handed to the collaborator; the prompt forbids referencing anything else.
type Renderer struct {
	llm    llm.Client
	logger *zap.Logger
}

func NewRenderer(client llm.Client, logger *zap.Logger) *Renderer {
	return &Renderer{llm: client, logger: logger}
}

// Render produces the final answer text. A collaborator failure is fatal
// for the turn; no retry, no validation of the output content.
func (r *Renderer) Render(ctx context.Context, query string, result models.QueryResult) (string, error) {
	sample, err := json.MarshalIndent(result.Sample, "", "  ")
	if err != nil {
		return "", fmt.Errorf("renderer: encoding sample: %w", err)
	}

	prompt := fmt.Sprintf(`You are an 'Intelligent Customer Assistant', a helpful and professional financial bot for customer named %s.

USER QUERY: "%s"

INPUT DATA:
- Total Amount: Rp %s
- Number of Transactions: %d
- Largest Transaction: Rp %s
- Recent Details: %s

GOAL:
1. Answer the user's question directly and clearly, in %s language with professional yet friendly tone.
2. Provide helpful insight only if you are sure, such as largest transactions or spending trends. If no data is found, politely inform.
3. Always format currency in Rupiah with thousands separators.

STRICT RULE: Only use INPUT DATA provided above. Do not hallucinate transactions.`,
		result.CustomerName,
		query,
		FormatAmount(result.Total),
		result.Count,
		FormatAmount(result.MaxAmount),
		string(sample),
		languageName(result.Language),
	)

	response, err := r.llm.Invoke(ctx, prompt)
	if err != nil {
		r.logger.Error("renderer collaborator failed", zap.Error(err))
		return "", fmt.Errorf("renderer: %w", err)
	}
	return response, nil
}

var printer = message.NewPrinter(language.English)

// FormatAmount renders a decimal amount with thousands separators, keeping
// any fractional digits.
func FormatAmount(d decimal.Decimal) string {
	formatted := printer.Sprintf("%d", d.IntPart())
	s := d.String()
	if i := strings.IndexByte(s, '.'); i >= 0 {
		formatted += s[i:]
	}
	return formatted
}

// languageName spells out the tags customers actually use so the prompt
// reads naturally; anything else is passed through as-is.
func languageName(tag string) string {
	switch tag {
	case "id":
		return "Indonesian"
	case "en", "":
		return "English"
	default:
		return tag
	}
}
