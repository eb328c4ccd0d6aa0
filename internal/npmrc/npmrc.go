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

// Package npmrc models ~/.npmrc as an ordered sequence of line directives
// and provides a pure merge toward the desired registry configuration.
package npmrc

import (
	"path/filepath"
	"strings"
)

const (
	// RegistryHost is the private registry all scoped packages resolve to.
	RegistryHost = "npm.pkg.github.com"
	RegistryURL  = "https://" + RegistryHost

	// TokenEnv is the environment variable .npmrc references instead of a
	// literal token. The shell profile loader exports it at shell startup.
	TokenEnv = "NPM_TOKEN"

	fileName = ".npmrc"
)

// Path returns the npm per-user config file under home.
func Path(home string) string {
	return filepath.Join(home, fileName)
}

// Desired returns the two directive lines a configured .npmrc must end with:
// the scope-to-registry mapping for org and the auth-token mapping for the
// registry host, referencing TokenEnv rather than any literal secret.
func Desired(org string) []string {
	return []string{
		"@" + org + ":registry=" + RegistryURL,
		"//" + RegistryHost + "/:_authToken=${" + TokenEnv + "}",
	}
}

// matchesDirective reports whether a line is a recognized directive for the
// registry host. Matching is deliberately loose (suffix on the registry URL,
// prefix on the host path) so stale or differently formatted prior entries
// for the same host are caught.
func matchesDirective(line string) bool {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "//"+RegistryHost+"/") {
		return true
	}
	return strings.HasSuffix(trimmed, ":registry="+RegistryURL)
}

// Merge rewrites content so that it ends with exactly the Desired lines for
// org. Unrelated non-empty lines keep their original order; any pre-existing
// directive line for the registry host is dropped rather than duplicated.
// The returned bool is false when content already converged and no write is
// needed. Merge is pure; callers handle file I/O.
func Merge(content, org string) (string, bool) {
	desired := Desired(org)

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	if containsAll(lines, desired) {
		return content, false
	}

	kept := lines[:0]
	for _, line := range lines {
		if !matchesDirective(line) {
			kept = append(kept, line)
		}
	}

	merged := strings.Join(append(kept, desired...), "\n") + "\n"
	return merged, true
}

func containsAll(lines, wanted []string) bool {
	for _, want := range wanted {
		found := false
		for _, line := range lines {
			if line == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
