// Package cmd provides helpers for executing shell commands with proper error handling.
package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/raphi011/wtctl/internal/log"
)

// Runner executes external programs. Implementations must block until the
// program exits.
type Runner interface {
	// Output runs name with args in dir and returns stdout.
	Output(ctx context.Context, dir, name string, args ...string) ([]byte, error)
	// Run runs name with args in dir, discarding stdout.
	Run(ctx context.Context, dir, name string, args ...string) error
}

// Exec is the Runner backed by os/exec.
type Exec struct{}

// Output implements Runner.
func (Exec) Output(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	return OutputContext(ctx, dir, name, args...)
}

// Run implements Runner.
func (Exec) Run(ctx context.Context, dir, name string, args ...string) error {
	return RunContext(ctx, dir, name, args...)
}

// RunContext executes a command with context support and verbose logging.
// A non-empty stderr becomes the error message.
func RunContext(ctx context.Context, dir, name string, args ...string) error {
	_, err := run(ctx, dir, name, args, false)
	return err
}

// OutputContext executes a command with context support and verbose logging,
// returning stdout. A non-empty stderr becomes the error message.
func OutputContext(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	return run(ctx, dir, name, args, true)
}

func run(ctx context.Context, dir, name string, args []string, capture bool) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := log.FromContext(ctx).Command(dir, name, args...)
	start := time.Now()

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	var stdout, stderr bytes.Buffer
	if capture {
		c.Stdout = &stdout
	}
	c.Stderr = &stderr

	err := c.Run()
	done(time.Since(start))

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errMsg := strings.TrimSpace(stderr.String()); errMsg != "" {
			return nil, errors.New(errMsg)
		}
		return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return stdout.Bytes(), nil
}
