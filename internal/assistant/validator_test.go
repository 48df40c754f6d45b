package assistant

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/sashasgithome/finance-bot-test/internal/llm"
)

func TestValidateOutcomes(t *testing.T) {
	tests := []struct {
		name        string
		response    string
		wantKind    OutcomeKind
		wantMessage string
	}{
		{
			name:     "valid sentinel",
			response: "VALID",
			wantKind: OutcomeValid,
		},
		{
			name:     "valid with surrounding whitespace",
			response: "  VALID\n",
			wantKind: OutcomeValid,
		},
		{
			name:        "out of capability",
			response:    "CAPABILITY: I can only count, total, or list your transactions.",
			wantKind:    OutcomeOutOfCapability,
			wantMessage: "I can only count, total, or list your transactions.",
		},
		{
			name:        "out of domain",
			response:    "DOMAIN: I am a finance assistant and cannot help with recipes.",
			wantKind:    OutcomeOutOfDomain,
			wantMessage: "I am a finance assistant and cannot help with recipes.",
		},
		{
			name:        "unmarked rejection shown verbatim",
			response:    "I'm sorry, I cannot help with that request.",
			wantKind:    OutcomeOutOfCapability,
			wantMessage: "I'm sorry, I cannot help with that request.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(llm.NewScriptedClient(tt.response), zap.NewNop())
			outcome, err := v.Validate(context.Background(), "how much did I spend?")
			if err != nil {
				t.Fatalf("Validate returned error: %v", err)
			}
			if outcome.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", outcome.Kind, tt.wantKind)
			}
			if outcome.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", outcome.Message, tt.wantMessage)
			}
		})
	}
}

func TestValidateEmptyResponseIsError(t *testing.T) {
	v := NewValidator(llm.NewScriptedClient(""), zap.NewNop())
	if _, err := v.Validate(context.Background(), "anything"); err == nil {
		t.Error("expected an error for an empty collaborator response")
	}
}

func TestValidateCollaboratorErrorPropagates(t *testing.T) {
	client := llm.NewScriptedClient()
	client.Fail(errors.New("unavailable"))
	v := NewValidator(client, zap.NewNop())

	if _, err := v.Validate(context.Background(), "anything"); err == nil {
		t.Error("expected collaborator error to propagate")
	}
}
