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

package vault

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/npm-token-setup/internal/run"
)

type securityCLI struct {
	runner run.Runner
}

// NewSecurityCLI returns a Store that shells out to the macOS security(1)
// binary. It is the backend for builds without cgo and mirrors the lookup
// the shell profile snippet performs at shell startup.
func NewSecurityCLI(runner run.Runner) Store {
	return &securityCLI{runner: runner}
}

func (s *securityCLI) Get(ctx context.Context, account string) (string, error) {
	stdout, _, err := s.runner.Run(ctx, nil, "security",
		"find-generic-password", "-a", account, "-s", ServiceName, "-w")
	if err != nil {
		// security exits 44 when the item does not exist.
		return "", fmt.Errorf("%w: %v", ErrCredentialsNotFound, err)
	}
	secret := strings.TrimSpace(string(stdout))
	if secret == "" {
		return "", ErrCredentialsNotFound
	}
	return secret, nil
}

func (s *securityCLI) Set(ctx context.Context, account, secret string) error {
	// -U updates the item in place when it already exists.
	_, stderr, err := s.runner.Run(ctx, nil, "security",
		"add-generic-password", "-a", account, "-s", ServiceName, "-w", secret, "-U")
	if err != nil {
		return fmt.Errorf("keychain write failed: %s: %w", strings.TrimSpace(string(stderr)), err)
	}
	return nil
}
