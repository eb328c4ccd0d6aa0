//go:build !darwin || !cgo

package vault

import "github.com/docker/npm-token-setup/internal/run"

// Default falls back to the security(1) CLI when the cgo Keychain bindings
// are unavailable. Off macOS the binary is missing and every call fails,
// which the command guards against before reaching the store.
func Default(runner run.Runner) Store {
	return NewSecurityCLI(runner)
}
