package apiclient

import "github.com/custodia-labs/planroom/internal/core/ports/driven"

// Message is the role/content pair every chat API accepts.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Messages converts a transcript to wire messages.
func Messages(in []driven.ChatMessage) []Message {
	out := make([]Message, len(in))
	for i, m := range in {
		out[i] = Message{Role: m.Role, Content: m.Content}
	}
	return out
}

// Temperature returns nil for zero so the provider default applies.
func Temperature(t float64) *float64 {
	if t <= 0 {
		return nil
	}
	return &t
}

// Float32s narrows a decoded JSON vector.
func Float32s(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
