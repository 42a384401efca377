// Package llm turns story notes into a spoken briefing script.
package llm

import "context"

// Message is one message in a chat exchange.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is a chat-completion backend.
type Provider interface {
	// Chat sends the messages and returns the model's reply text.
	Chat(ctx context.Context, messages []Message) (string, error)
}
