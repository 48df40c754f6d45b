package assistant

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sashasgithome/finance-bot-test/internal/llm"
)

// OutcomeKind is the three-way result of query validation.
type OutcomeKind int

const (
	OutcomeValid OutcomeKind = iota
	// In-domain but outside the supported operations.
	OutcomeOutOfCapability
	// Unrelated to finance or banking.
	OutcomeOutOfDomain
)

// Outcome carries the validation verdict. For rejections, Message is the
// collaborator's pre-formatted text and is shown to the customer verbatim.
type Outcome struct {
	Kind    OutcomeKind
	Message string
}

const (
	validSentinel    = "VALID"
	capabilityPrefix = "CAPABILITY:"
	domainPrefix     = "DOMAIN:"
)

// Validator classifies a free-text query as answerable, out of capability
// or out of domain. The classification itself is delegated to the model.
type Validator struct {
	llm    llm.Client
	logger *zap.Logger
}

func NewValidator(client llm.Client, logger *zap.Logger) *Validator {
	return &Validator{llm: client, logger: logger}
}

// Validate runs the classification. A collaborator failure or an empty
// response is fatal for the turn; no retry is attempted.
func (v *Validator) Validate(ctx context.Context, query string) (Outcome, error) {
	prompt := fmt.Sprintf(`CONTEXT:
You are an 'Intelligent and Helpful Customer Assistant Bot' for a national bank.
Your assistant capabilities are limited to : counting amount of transactions, checking total spending, finding the largest transaction, or listing any transactions.
Your customer sends a query : %s

TASK:
1. If query is within your capabilities, return the string "VALID" only.
2. If query is related to finance/banking but outside your capabilities list, return "CAPABILITY: " followed by a polite sentence clarifying your limitations.
3. If query is unrelated to finance/banking, return "DOMAIN: " followed by a polite sentence explaining your specific role as a finance assistant only.`, query)

	response, err := v.llm.Invoke(ctx, prompt)
	if err != nil {
		return Outcome{}, fmt.Errorf("validator: %w", err)
	}

	response = strings.TrimSpace(response)
	switch {
	case response == "":
		return Outcome{}, fmt.Errorf("validator: empty response from collaborator")
	case response == validSentinel:
		return Outcome{Kind: OutcomeValid}, nil
	case strings.HasPrefix(response, capabilityPrefix):
		return Outcome{
			Kind:    OutcomeOutOfCapability,
			Message: strings.TrimSpace(strings.TrimPrefix(response, capabilityPrefix)),
		}, nil
	case strings.HasPrefix(response, domainPrefix):
		return Outcome{
			Kind:    OutcomeOutOfDomain,
			Message: strings.TrimSpace(strings.TrimPrefix(response, domainPrefix)),
		}, nil
	default:
		// Unmarked rejection text is still a rejection, shown verbatim.
		v.logger.Debug("validator response missing prefix", zap.String("response", response))
		return Outcome{Kind: OutcomeOutOfCapability, Message: response}, nil
	}
}
