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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/docker/npm-token-setup/internal/prompt"
	"github.com/docker/npm-token-setup/internal/run"
	"github.com/docker/npm-token-setup/internal/setup"
	"github.com/docker/npm-token-setup/internal/vault"
	"github.com/docker/npm-token-setup/internal/version"
)

// Note: We use a custom help template to make it more brief.
const helpTemplate = `Store a registry token in the macOS Keychain and point npm at it.
{{if .UseLine}}
Usage: {{.UseLine}}
{{end}}{{if .HasAvailableLocalFlags}}
Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}
`

// rootCommand builds the CLI. runF receives the parsed configuration; the
// production runF is runSetup, tests inject their own.
func rootCommand(ctx context.Context, runF func(ctx context.Context, cfg setup.Config) error) *cobra.Command {
	var cfg setup.Config

	cmd := &cobra.Command{
		Use:           "npm-token-setup [OPTIONS]",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs, // stray positionals are ignored, never fatal
		// Unknown flags are ignored rather than rejected so the command
		// tolerates invocations written for other versions of itself.
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		Version:            fmt.Sprintf("%s, commit %s", version.Version, version.Commit()),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.TokenSet = cmd.Flags().Changed("token")
			return runF(cmd.Context(), cfg)
		},
	}
	cmd.SetContext(ctx)
	cmd.SetVersionTemplate("npm-token-setup\n{{.Version}}\n")
	cmd.SetHelpTemplate(helpTemplate)

	cmd.Flags().StringVar(&cfg.Org, "org", setup.DefaultOrg, "Package scope to point at the private registry")
	cmd.Flags().StringVar(&cfg.Token, "token", "", "Registry token (skips the interactive prompt; visible in shell history)")
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "Report intended changes without applying them")

	return cmd
}

// valueFlags are the flags that take a value; normalizeArgs needs to know
// them to decide whether the following token is a value or another flag.
var valueFlags = map[string]bool{"--org": true, "--token": true}

// normalizeArgs drops a value-taking flag that is not followed by a usable
// value: a space-separated value is consumed only when it does not itself
// look like a flag, so "--org --dry-run" keeps the default org and still
// applies --dry-run instead of swallowing it as the org name.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		if valueFlags[args[i]] && (i+1 >= len(args) || strings.HasPrefix(args[i+1], "-")) {
			continue
		}
		out = append(out, args[i])
	}
	return out
}

// runSetup completes the configuration from the process environment and
// runs the flow with its real collaborators.
func runSetup(ctx context.Context, cfg setup.Config) error {
	if runtime.GOOS != "darwin" {
		return errors.New("npm-token-setup only supports macOS: it stores the token in the macOS Keychain")
	}

	account, err := vault.Account()
	if err != nil {
		return err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolving home directory: %w", err)
	}
	cfg.Account = account
	cfg.HomeDir = home
	cfg.Shell = os.Getenv("SHELL")

	runner := run.System()
	flow := &setup.Flow{
		Config: cfg,
		Store:  vault.Default(runner),
		Runner: runner,
		Prompt: prompt.NewTerminal(),
		Out:    os.Stdout,
		Log:    logrus.StandardLogger(),
	}

	if err := flow.Run(ctx); err != nil {
		if errors.Is(err, setup.ErrDeclined) {
			fmt.Println("Aborted, nothing was changed.")
			return nil
		}
		return err
	}
	return nil
}
