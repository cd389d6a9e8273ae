package driven

// PromptStore provides access to prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptPersona is the assistant persona (system prompt). No placeholders.
	PromptPersona = "ayten_system"

	// PromptStyleGuard forbids meta answers and fixes tone and language. No placeholders.
	PromptStyleGuard = "style_guard"
)
