// Package llm generates answers from a prompt via a hosted language model.
package llm

import "context"

// Generator produces a text completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
