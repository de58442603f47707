// Package shell runs guidebook code blocks and validate commands in local
// shell sessions. Every open session is tracked by the session memoizer so
// that an interrupt can close it.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/viant/gosh/runner"
	"github.com/viant/guidebook/internal/logx"
	"github.com/viant/guidebook/model/graph"
	"github.com/viant/guidebook/service/memo"
	"go.uber.org/zap"
)

const defaultTimeoutMs = 10 * 60 * 1000

var exportExpr = regexp.MustCompile(`^\s*export\s+([A-Za-z_][A-Za-z0-9_]*)=(.*)$`)

// Service executes commands.
type Service struct {
	memoizer  *memo.Memoizer
	factory   Factory
	timeoutMs int
	writer    io.Writer
	quiet     bool
}

// New creates a service backed by memoizer.
func New(memoizer *memo.Memoizer, opts ...Option) *Service {
	ret := &Service{memoizer: memoizer, factory: LocalFactory, timeoutMs: defaultTimeoutMs, writer: os.Stdout}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.memoizer == nil {
		ret.memoizer = memo.New()
	}
	return ret
}

// Execute runs input commands in a fresh session seeded with the memoized
// environment. Exported variables are recorded back into the memoizer.
func (s *Service) Execute(ctx context.Context, input *Input, output *Output) error {
	env := s.memoizer.Env()
	for k, v := range input.Env {
		env[k] = v
	}
	session, err := s.factory(ctx, env)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	release := s.memoizer.Track("shell", session)
	defer func() {
		release()
		if err := session.Close(); err != nil {
			logx.FromContext(ctx).Debug("failed to close session", zap.Error(err))
		}
	}()

	if input.Workdir != "" {
		if _, _, err := session.Run(ctx, fmt.Sprintf("cd %s", input.Workdir)); err != nil {
			return fmt.Errorf("failed to change directory: %w", err)
		}
	}

	timeoutMs := input.TimeoutMs
	if timeoutMs == 0 {
		timeoutMs = s.timeoutMs
	}
	var stdout, stderr strings.Builder
	for _, cmd := range input.Commands {
		command := s.executeCommand(ctx, session, cmd, time.Duration(timeoutMs)*time.Millisecond)
		output.Commands = append(output.Commands, command)
		if command.Output != "" {
			stdout.WriteString(command.Output)
			stdout.WriteString("\n")
		}
		if command.Stderr != "" {
			stderr.WriteString(command.Stderr)
			stderr.WriteString("\n")
		}
		output.Status = command.Status
		if command.Status != 0 {
			if input.abortOnError() {
				break
			}
			continue
		}
		for _, line := range Lines(cmd) {
			match := exportExpr.FindStringSubmatch(line)
			if match == nil {
				continue
			}
			if output.Exports == nil {
				output.Exports = map[string]string{}
			}
			output.Exports[match[1]] = unquote(strings.TrimSpace(match[2]))
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	output.Stdout = strings.TrimSpace(stdout.String())
	output.Stderr = strings.TrimSpace(stderr.String())
	if len(output.Exports) > 0 {
		s.memoizer.MergeEnv(output.Exports)
	}
	return nil
}

func (s *Service) executeCommand(ctx context.Context, session Session, cmd string, duration time.Duration) *Command {
	command := &Command{Input: cmd}
	started := time.Now()
	stdout, status, err := session.Run(ctx, cmd, runner.WithTimeout(int(duration.Milliseconds())))
	if elapsed := time.Since(started); elapsed > duration && err == nil {
		err = fmt.Errorf("command %v timed out after: %s", cmd, elapsed)
	}
	if err != nil && status == 0 {
		status = -1
	}
	command.Status = status
	if status == 0 {
		command.Output = stdout
		return command
	}
	if stdout == "" && err != nil {
		stdout = err.Error()
	}
	command.Stderr = stdout
	return command
}

// Validate runs a validate command; a zero exit status is a success.
func (s *Service) Validate(ctx context.Context, command string) (graph.Status, error) {
	output := &Output{}
	if err := s.Execute(ctx, &Input{Commands: Script(command)}, output); err != nil {
		return graph.StatusFailure, err
	}
	if output.Status != 0 {
		return graph.StatusFailure, nil
	}
	return graph.StatusSuccess, nil
}

// Exec runs a code block. Memoized blocks run once per session, keyed by
// their body.
func (s *Service) Exec(ctx context.Context, leaf *graph.Leaf) error {
	if !IsShell(leaf.Language) {
		return fmt.Errorf("unsupported language: %v", leaf.Language)
	}
	run := func(ctx context.Context) (string, error) {
		output := &Output{}
		if err := s.Execute(ctx, &Input{Commands: Script(leaf.Body)}, output); err != nil {
			return "", err
		}
		if output.Status != 0 {
			last := output.Commands[len(output.Commands)-1]
			return "", &ExitError{Command: last.Input, Status: last.Status, Stderr: last.Stderr}
		}
		return output.Stdout, nil
	}
	var stdout string
	var err error
	if leaf.Memoize {
		stdout, err = s.memoizer.Memo(ctx, leaf.Body, run)
	} else {
		stdout, err = run(ctx)
	}
	if err != nil {
		return err
	}
	if !s.quiet && stdout != "" {
		_, _ = fmt.Fprintln(s.writer, stdout)
	}
	return nil
}

// IsShell reports whether language denotes a shell code block.
func IsShell(language string) bool {
	switch strings.ToLower(language) {
	case "", "sh", "bash", "shell", "zsh", "console":
		return true
	}
	return false
}

// Script returns body as a single session command so that multi-line
// constructs such as if blocks reach the shell intact.
func Script(body string) []string {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	return []string{body}
}

// Lines splits a script body into logical lines, joining backslash
// continuations and dropping blank lines and comments. It is used to detect
// exported variables.
func Lines(body string) []string {
	var ret []string
	var pending strings.Builder
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.HasSuffix(line, "\\") {
			pending.WriteString(strings.TrimSuffix(line, "\\"))
			continue
		}
		pending.WriteString(line)
		command := strings.TrimSpace(pending.String())
		pending.Reset()
		if command == "" || strings.HasPrefix(command, "#") {
			continue
		}
		ret = append(ret, command)
	}
	if rest := strings.TrimSpace(pending.String()); rest != "" {
		ret = append(ret, rest)
	}
	return ret
}

func unquote(value string) string {
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') || (value[0] == '\'' && value[len(value)-1] == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}
