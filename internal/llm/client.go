package llm

import "context"

// Client is the language-model collaborator: plain text in, plain text
// out. Callers own prompt construction and are responsible for tolerating
// markdown fences around any JSON they asked for.
type Client interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}
