// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/roswate/ayten-bot/internal/core/domain"
)

// AnswerReceived carries the assistant's reply back to the model.
type AnswerReceived struct {
	Answer *domain.Answer
	Err    error
}

// ConversationCleared is sent when the user starts a new conversation.
type ConversationCleared struct{}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the conversation view.
	ViewChat ViewType = iota
	// ViewPassages lists the context behind the last answer.
	ViewPassages
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewPassages:
		return "passages"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals an error to display.
type ErrorOccurred struct {
	Err error
}
