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

package run

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
)

// Runner executes a named binary and returns its stdout and stderr
// separately: callers key decisions on stdout and report diagnostics from
// both. extraEnv entries ("KEY=value") are appended to the child
// environment only; the parent process environment is never mutated.
type Runner interface {
	Run(ctx context.Context, extraEnv []string, name string, args ...string) (stdout, stderr []byte, err error)
}

type systemRunner struct{}

// System returns a Runner backed by os/exec.
func System() Runner {
	return systemRunner{}
}

func (systemRunner) Run(ctx context.Context, extraEnv []string, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Call records a single Fake invocation.
type Call struct {
	Name     string
	Args     []string
	ExtraEnv []string
}

// Response is what a Fake returns for a matched command line.
type Response struct {
	Stdout []byte
	Stderr []byte
	Err    error
}

// Fake is a scripted Runner for tests. Responses are keyed by the full
// command line ("name arg1 arg2 ..."); unmatched commands return empty
// output and no error.
type Fake struct {
	Responses map[string]Response
	Calls     []Call
}

func (f *Fake) Run(ctx context.Context, extraEnv []string, name string, args ...string) ([]byte, []byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	f.Calls = append(f.Calls, Call{Name: name, Args: args, ExtraEnv: extraEnv})
	key := strings.Join(append([]string{name}, args...), " ")
	if resp, ok := f.Responses[key]; ok {
		return resp.Stdout, resp.Stderr, resp.Err
	}
	return nil, nil, nil
}
