package driving

import (
	"context"

	"github.com/roswate/ayten-bot/internal/core/domain"
)

// RetrieverService provides semantic retrieval to external actors.
type RetrieverService interface {
	// Retrieve returns up to opts.K chunks whose distance to the query is
	// within opts.MaxDistance, ascending by distance. A blank query yields
	// an empty result.
	Retrieve(ctx context.Context, query string, opts domain.RetrieveOptions) ([]domain.RetrievalResult, error)
}

// AskService answers user messages grounded on retrieved context.
type AskService interface {
	// Ask answers a single message.
	Ask(ctx context.Context, message string) (*domain.Answer, error)

	// Chat answers the last user message of a conversation.
	// Earlier turns are sent to the generator as history.
	Chat(ctx context.Context, history []domain.Message, message string) (*domain.Answer, error)
}
