// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under ~/.markscan.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable prompts for the cloud OCR engine
package file
