// Copyright 2025-2026 Docker, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package setup orchestrates the token setup flow: acquire the token, store
// it in the Keychain, install the shell profile loader, converge ~/.npmrc,
// and verify against the registry. Stages run strictly in order; the first
// failure stops the flow. Partial completion is an accepted end state.
package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/docker/npm-token-setup/internal/npmrc"
	"github.com/docker/npm-token-setup/internal/prompt"
	"github.com/docker/npm-token-setup/internal/run"
	"github.com/docker/npm-token-setup/internal/shellrc"
	"github.com/docker/npm-token-setup/internal/vault"
)

const (
	// DefaultOrg is the package scope configured when --org is not given.
	DefaultOrg = "docker"

	// placeholderToken substitutes for a real token in dry-run mode so the
	// flow never prompts when it has nothing to write anyway.
	placeholderToken = "dry-run-placeholder-token"
)

// ErrDeclined is returned when the operator answers no at the Keychain
// confirmation. It is not a failure; the command exits 0 with no side
// effects.
var ErrDeclined = errors.New("keychain write declined")

// VerificationError reports a failed identity check against the registry.
// It carries the npm output so the operator can diagnose the rejection.
type VerificationError struct {
	Output string
}

func (e *VerificationError) Error() string {
	msg := "registry verification failed"
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ":\n" + out
	}
	return msg
}

// Config is the run configuration, derived once from the command line and
// process environment before the flow starts.
type Config struct {
	Org      string
	Token    string
	TokenSet bool // --token was given, even if empty
	DryRun   bool

	HomeDir string
	Shell   string // value of $SHELL
	Account string // Keychain account, the current OS user
}

// Flow wires the stages to their collaborators. Every external touchpoint
// (vault, subprocesses, terminal input, operator output) is injected so the
// flow is testable without a macOS host.
type Flow struct {
	Config Config
	Store  vault.Store
	Runner run.Runner
	Prompt prompt.Interactive
	Out    io.Writer
	Log    logrus.FieldLogger
}

// Run executes the flow. It returns ErrDeclined when the operator refuses
// the Keychain write, a *VerificationError when the final identity check
// fails, and an ordinary error for any fatal condition.
func (f *Flow) Run(ctx context.Context) error {
	token, err := f.acquireToken(ctx)
	if err != nil {
		return err
	}
	if err := f.storeToken(ctx, token); err != nil {
		return err
	}
	if err := f.updateShellProfile(); err != nil {
		return err
	}
	if err := f.writeNpmrc(); err != nil {
		return err
	}
	return f.verify(ctx)
}

func (f *Flow) acquireToken(ctx context.Context) (string, error) {
	if f.Config.TokenSet {
		token := strings.TrimSpace(f.Config.Token)
		if token == "" {
			return "", errors.New("token must not be empty")
		}
		f.Log.Warn("tokens passed via --token end up in shell history; prefer the interactive prompt")
		return token, nil
	}

	if f.Config.DryRun {
		f.printf("[dry-run] no --token given, using a placeholder token")
		return placeholderToken, nil
	}

	token, err := f.Prompt.ReadSecret(ctx, "Enter registry token (input hidden): ")
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.New("token must not be empty")
	}
	return token, nil
}

func (f *Flow) storeToken(ctx context.Context, token string) error {
	target := fmt.Sprintf("Keychain item (service %q, account %q)", vault.ServiceName, f.Config.Account)
	if f.Config.DryRun {
		f.printf("[dry-run] would store the token in the %s", target)
		return nil
	}

	ok, err := f.Prompt.Confirm(ctx, fmt.Sprintf("Store the token in the %s?", target))
	if err != nil {
		return fmt.Errorf("reading confirmation: %w", err)
	}
	if !ok {
		return ErrDeclined
	}

	if err := f.Store.Set(ctx, f.Config.Account, token); err != nil {
		return fmt.Errorf("storing token in the keychain: %w", err)
	}
	f.printf("Token stored in the %s.", target)
	return nil
}

func (f *Flow) updateShellProfile() error {
	path, err := shellrc.ProfilePath(f.Config.Shell, f.Config.HomeDir)
	if err != nil {
		return err
	}
	f.Log.WithField("path", path).Debug("resolved shell profile")

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	content := string(data)

	if shellrc.HasSnippet(content) {
		f.printf("%s already loads %s, skipping.", path, npmrc.TokenEnv)
		return nil
	}

	if f.Config.DryRun {
		if os.IsNotExist(err) {
			f.printf("[dry-run] would create %s with the %s loader", path, npmrc.TokenEnv)
		} else {
			f.printf("[dry-run] would append the %s loader to %s", npmrc.TokenEnv, path)
		}
		return nil
	}

	if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
		return fmt.Errorf("creating directory for %s: %w", path, mkErr)
	}
	if err := os.WriteFile(path, []byte(shellrc.Append(content)), 0o644); err != nil {
		return fmt.Errorf("updating %s: %w", path, err)
	}
	f.printf("Added the %s loader to %s.", npmrc.TokenEnv, path)
	return nil
}

func (f *Flow) writeNpmrc() error {
	path := npmrc.Path(f.Config.HomeDir)

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	merged, changed := npmrc.Merge(string(data), f.Config.Org)
	if !changed {
		f.printf("%s already configured for @%s, skipping.", path, f.Config.Org)
		return nil
	}

	if f.Config.DryRun {
		f.printf("[dry-run] would write %s with:", path)
		for _, line := range npmrc.Desired(f.Config.Org) {
			f.printf("  %s", line)
		}
		return nil
	}

	if err := os.WriteFile(path, []byte(merged), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	f.printf("Configured %s for @%s.", path, f.Config.Org)
	return nil
}

func (f *Flow) verify(ctx context.Context) error {
	if f.Config.DryRun {
		f.printf("[dry-run] skipping registry verification")
		return nil
	}

	secret, err := f.Store.Get(ctx, f.Config.Account)
	if err != nil {
		f.Log.WithError(err).Debug("keychain read failed, falling back to the environment")
		secret = os.Getenv(npmrc.TokenEnv)
	}
	if secret == "" {
		return fmt.Errorf("no token available for verification: keychain read failed and %s is not set", npmrc.TokenEnv)
	}

	stdout, stderr, err := f.Runner.Run(ctx,
		[]string{npmrc.TokenEnv + "=" + secret},
		"npm", "whoami", "--registry", npmrc.RegistryURL)
	// Only stdout counts as the identity: npm prints warnings on stderr
	// even on successful runs.
	identity := strings.TrimSpace(string(stdout))
	if err != nil || identity == "" {
		return &VerificationError{Output: string(stdout) + string(stderr)}
	}

	f.printf("Authenticated to %s as %s.", npmrc.RegistryHost, identity)
	return nil
}

func (f *Flow) printf(format string, args ...any) {
	fmt.Fprintf(f.Out, format+"\n", args...)
}
