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

// Package prompt provides the interactive input capability of the setup
// flow: a masked secret read and a yes/no confirmation. Both block until
// input arrives; Ctrl-C or context cancellation mid-prompt aborts with
// ErrInterrupted.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrInterrupted is returned when the operator cancels a prompt (Ctrl-C
// while the terminal is in raw mode, or context cancellation).
var ErrInterrupted = errors.New("interrupted")

// Interactive is the input capability injected into the setup flow.
// Confirm defaults to no: only an explicit y/yes answer returns true.
type Interactive interface {
	ReadSecret(ctx context.Context, label string) (string, error)
	Confirm(ctx context.Context, label string) (bool, error)
}

// Terminal reads prompts from in and echoes labels to out. When in is a
// real terminal the secret read switches to raw mode and masks all input;
// otherwise (tests, pipes) it degrades to a plain line read.
type Terminal struct {
	in     *os.File
	out    io.Writer
	reader *bufio.Reader
}

func NewTerminal() *Terminal {
	return NewTerminalWithIO(os.Stdin, os.Stdout)
}

func NewTerminalWithIO(in *os.File, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out, reader: bufio.NewReader(in)}
}

func (t *Terminal) ReadSecret(ctx context.Context, label string) (string, error) {
	fmt.Fprint(t.out, label)

	fd := int(t.in.Fd())
	if !term.IsTerminal(fd) {
		line, err := t.readLine(ctx)
		if err != nil {
			return "", err
		}
		fmt.Fprintln(t.out)
		return strings.TrimRight(line, "\r\n"), nil
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return "", fmt.Errorf("entering raw terminal mode: %w", err)
	}
	defer term.Restore(fd, state)

	type result struct {
		secret string
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		secret, err := maskedRead(t.reader)
		ch <- result{secret: secret, err: err}
	}()

	select {
	case <-ctx.Done():
		// A caught signal cancelled the context while the read was
		// blocked; the prompt must not outlive it.
		return "", ErrInterrupted
	case res := <-ch:
		if res.err != nil {
			return "", res.err
		}
		fmt.Fprint(t.out, "\r\n")
		return res.secret, nil
	}
}

// maskedRead consumes keystrokes from a raw-mode terminal without echoing
// them. CR or LF terminates the input, Ctrl-C aborts, and backspace edits
// the buffer.
func maskedRead(r io.ByteReader) (string, error) {
	var buf []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		switch b {
		case 0x03: // Ctrl-C
			return "", ErrInterrupted
		case '\r', '\n':
			return string(buf), nil
		case 0x7f, 0x08: // backspace
			if len(buf) > 0 {
				buf = buf[:len(buf)-1]
			}
		default:
			buf = append(buf, b)
		}
	}
}

func (t *Terminal) Confirm(ctx context.Context, label string) (bool, error) {
	fmt.Fprintf(t.out, "%s [y/N] ", label)
	line, err := t.readLine(ctx)
	if err != nil {
		return false, err
	}
	return parseYes(line), nil
}

// readLine reads one line while honoring cancellation: the blocking read
// runs in a goroutine and loses the race against ctx.Done(), so an
// interrupt mid-prompt aborts instead of waiting for (and accepting) input
// typed after the signal.
func (t *Terminal) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", ErrInterrupted
	}

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := t.reader.ReadString('\n')
		ch <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrInterrupted
	case res := <-ch:
		if res.err != nil && res.err != io.EOF {
			return "", res.err
		}
		return res.line, nil
	}
}

func parseYes(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// Script is a scripted Interactive for tests, answering prompts in order.
type Script struct {
	Secrets  []string
	Confirms []bool

	// Labels records every prompt label in the order seen.
	Labels []string
}

func (s *Script) ReadSecret(ctx context.Context, label string) (string, error) {
	s.Labels = append(s.Labels, label)
	if len(s.Secrets) == 0 {
		return "", errors.New("script: no secret answer left")
	}
	secret := s.Secrets[0]
	s.Secrets = s.Secrets[1:]
	return secret, nil
}

func (s *Script) Confirm(ctx context.Context, label string) (bool, error) {
	s.Labels = append(s.Labels, label)
	if len(s.Confirms) == 0 {
		return false, errors.New("script: no confirm answer left")
	}
	answer := s.Confirms[0]
	s.Confirms = s.Confirms[1:]
	return answer, nil
}
