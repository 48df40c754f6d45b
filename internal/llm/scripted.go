package llm

import (
	"context"
	"sync"
)

// ScriptedClient replays canned responses in order. It backs tests and
// the mock mode of the CLI; once the script runs out the last response
// repeats.
type ScriptedClient struct {
	mu        sync.Mutex
	responses []string
	calls     []string
	err       error
}

func NewScriptedClient(responses ...string) *ScriptedClient {
	return &ScriptedClient{responses: responses}
}

// Fail makes every subsequent Invoke return err.
func (c *ScriptedClient) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *ScriptedClient) Invoke(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return "", c.err
	}
	c.calls = append(c.calls, prompt)
	if len(c.responses) == 0 {
		return "", nil
	}
	response := c.responses[0]
	if len(c.responses) > 1 {
		c.responses = c.responses[1:]
	}
	return response, nil
}

// Calls returns the prompts seen so far.
func (c *ScriptedClient) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}
