package assistant

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sashasgithome/finance-bot-test/internal/ledger"
	"github.com/sashasgithome/finance-bot-test/internal/llm"
	"github.com/sashasgithome/finance-bot-test/internal/models"
	"github.com/sashasgithome/finance-bot-test/internal/taxonomy"
)

// ErrNoTransactions is returned by StartSession when a CIF has no ledger
// rows. It is a valid state, distinct from a load failure.
var ErrNoTransactions = errors.New("assistant: no transactions found for CIF")

// Turn is the outcome of one processed query: the final answer plus the
// structured plan and grounding context behind it, for the surfaces'
// transparency view.
type Turn struct {
	Reply    string
	Rejected bool
	Spec     models.FilterSpec
	Result   models.QueryResult
}

// Assistant owns the full ledger and the four-stage query pipeline.
type Assistant struct {
	full      *ledger.Ledger
	source    ledger.Source
	generator *taxonomy.Generator
	validator *Validator
	planner   *Planner
	renderer  *Renderer
	logger    *zap.Logger
}

// New loads the complete transaction ledger once and wires the pipeline.
// A load failure is fatal: the assistant has no function without it.
func New(ctx context.Context, source ledger.Source, client llm.Client, logger *zap.Logger) (*Assistant, error) {
	full, err := source.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("ledger loaded", zap.Int("rows", len(full.Rows)))

	return &Assistant{
		full:      full,
		source:    source,
		generator: taxonomy.NewGenerator(client, logger),
		validator: NewValidator(client, logger),
		planner:   NewPlanner(client, logger),
		renderer:  NewRenderer(client, logger),
		logger:    logger,
	}, nil
}

// StartSession verifies a CIF, looks up the customer's profile and derives
// the category taxonomy for the session.
func (a *Assistant) StartSession(ctx context.Context, cif string) (*Session, error) {
	led := a.full.FilterByCustomer(cif)
	if len(led.Rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTransactions, cif)
	}

	profile, err := a.source.Profile(ctx, cif)
	if err != nil {
		return nil, err
	}

	tax, err := a.generator.Generate(ctx, led)
	if err != nil {
		return nil, err
	}

	a.logger.Info("session started",
		zap.String("cif", cif),
		zap.Int("transactions", len(led.Rows)),
		zap.Int("categories", len(tax.Categories)),
		zap.String("language", profile.Language))
	return NewSession(cif, profile, led, tax), nil
}

// Answer runs one query through the pipeline: validate, plan, execute,
// render. Collaborator failures in validation or rendering are fatal for
// the turn only and leave the conversation history untouched; planning
// failures fail open inside the planner.
func (a *Assistant) Answer(ctx context.Context, session *Session, query string) (Turn, error) {
	outcome, cached := session.outcomes.Get(query)
	if !cached {
		var err error
		outcome, err = a.validator.Validate(ctx, query)
		if err != nil {
			return Turn{}, err
		}
		session.outcomes.Set(query, outcome)
	}

	if outcome.Kind != OutcomeValid {
		session.Append(models.RoleUser, query)
		session.Append(models.RoleAssistant, outcome.Message)
		return Turn{Reply: outcome.Message, Rejected: true}, nil
	}

	spec, cached := session.plans.Get(query)
	if !cached {
		spec = a.planner.Plan(ctx, query, session.Taxonomy)
		session.plans.Set(query, spec)
	}

	result := Execute(session.Profile, session.Ledger, spec)
	a.logger.Debug("query executed",
		zap.String("cif", session.CIF),
		zap.String("operation", spec.Operation),
		zap.Int("matches", result.Count))

	reply, err := a.renderer.Render(ctx, query, result)
	if err != nil {
		return Turn{}, err
	}

	session.Append(models.RoleUser, query)
	session.Append(models.RoleAssistant, reply)
	return Turn{Reply: reply, Spec: spec, Result: result}, nil
}
