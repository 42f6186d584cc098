package cmd

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Fake is a Runner test double that returns preset output and records calls.
//
// Keys have the form "<dir>:<name> <args...>", e.g.
// "/repo:git stash list".
type Fake struct {
	Outputs map[string]string
	Errors  map[string]error

	mu    sync.Mutex
	calls []string
}

// Key builds the lookup key for a command.
func Key(dir, name string, args ...string) string {
	return fmt.Sprintf("%s:%s", dir, strings.Join(append([]string{name}, args...), " "))
}

// Output implements Runner.
func (f *Fake) Output(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	key := Key(dir, name, args...)
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()

	if err, ok := f.Errors[key]; ok {
		return nil, err
	}
	if out, ok := f.Outputs[key]; ok {
		return []byte(out), nil
	}
	return nil, fmt.Errorf("fake runner: no output for key %q", key)
}

// Run implements Runner.
func (f *Fake) Run(ctx context.Context, dir, name string, args ...string) error {
	_, err := f.Output(ctx, dir, name, args...)
	return err
}

// Calls returns the keys of all commands run so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
