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

// Package vault persists the registry token in the macOS Keychain under a
// fixed service name, keyed by the current OS user.
package vault

import (
	"context"
	"errors"
	"os"
	"os/user"
)

// ServiceName identifies the Keychain item holding the registry token.
// The shell profile loader snippet looks the token up under the same name,
// so changing it invalidates previously configured machines.
const ServiceName = "NPMRegistryToken"

var (
	ErrCredentialsNotFound   = errors.New("credentials not found in the keychain")
	ErrInteractionNotAllowed = errors.New("keychain interaction not allowed")
	ErrAuthFailed            = errors.New("keychain authorization failed")
)

// Store reads and writes the token for a Keychain account. Set has
// upsert-by-overwrite semantics.
type Store interface {
	Get(ctx context.Context, account string) (string, error)
	Set(ctx context.Context, account, secret string) error
}

// Account resolves the Keychain account name for the invoking user.
func Account() (string, error) {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username, nil
	}
	if name := os.Getenv("USER"); name != "" {
		return name, nil
	}
	return "", errors.New("could not determine the current user")
}
