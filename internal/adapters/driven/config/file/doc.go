// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the ayten home directory (~/.ayten or $AYTEN_HOME).
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage with environment overrides
//   - PromptStore: user-editable persona and style guard prompts
package file
