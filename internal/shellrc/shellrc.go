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

// Package shellrc resolves the shell profile file for the invoking shell and
// appends the NPM_TOKEN loader snippet exactly once.
package shellrc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/npm-token-setup/internal/npmrc"
	"github.com/docker/npm-token-setup/internal/vault"
)

// marker guards the loader block against duplicate appends. Its presence
// anywhere in the profile means the block was installed by a previous run.
const marker = "# Added by npm-token-setup"

// Snippet is the loader block appended to the shell profile. The token is
// looked up in the Keychain at shell startup; no literal secret is written.
const Snippet = marker + "\n" +
	"export " + npmrc.TokenEnv + `=$(security find-generic-password -a "$USER" -s ` + vault.ServiceName + ` -w 2>/dev/null)` + "\n"

// ProfilePath maps the invoking shell (the value of $SHELL) to its startup
// file under home. zsh uses ~/.zshrc. bash prefers ~/.bash_profile when it
// already exists and falls back to ~/.bashrc otherwise. Any other shell is
// an error; there is no file to target.
func ProfilePath(shell, home string) (string, error) {
	switch filepath.Base(shell) {
	case "zsh":
		return filepath.Join(home, ".zshrc"), nil
	case "bash":
		profile := filepath.Join(home, ".bash_profile")
		if _, err := os.Stat(profile); err == nil {
			return profile, nil
		}
		return filepath.Join(home, ".bashrc"), nil
	case ".":
		return "", fmt.Errorf("cannot determine shell: $SHELL is not set")
	default:
		return "", fmt.Errorf("unsupported shell %q: cannot locate a profile file", shell)
	}
}

// HasSnippet reports whether content already carries the loader block.
func HasSnippet(content string) bool {
	return strings.Contains(content, marker)
}

// Append returns content with the loader block appended, separated by a
// blank line from any existing content. Existing content is never rewritten.
func Append(content string) string {
	if content == "" {
		return Snippet
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + Snippet
}
