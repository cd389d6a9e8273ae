package domain

// Answer is a generated reply together with the context it was grounded on.
type Answer struct {
	// Text is the reply returned to the user.
	Text string

	// Prompt is the exact prompt sent to the generator.
	Prompt string

	// Context holds the retrieved chunks included in the prompt.
	Context []RetrievalResult

	// Retried is true when the first reply was rejected by the meta filter.
	Retried bool
}

// Message roles in a conversation.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    string
	Content string
}
