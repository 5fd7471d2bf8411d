// Package automation defines the browser capability the dispatcher drives and
// a headless Chrome implementation of it.
package automation

import (
	"context"
	"fmt"
)

// Session is a browser session scoped to a single posting. Selectors are CSS
// selectors.
type Session interface {
	// Navigate loads url and waits for the page to settle.
	Navigate(ctx context.Context, url string) error
	// Exists reports whether any element matches selector, without waiting.
	Exists(ctx context.Context, selector string) (bool, error)
	// Fill clears the first matching field and types value into it.
	Fill(ctx context.Context, selector, value string) error
	// Upload attaches a local file to the first matching file input.
	Upload(ctx context.Context, selector, path string) error
	// Click clicks the first matching element.
	Click(ctx context.Context, selector string) error
	// Close releases the session. It is safe to call more than once.
	Close() error
}

// Launcher opens automation sessions
type Launcher interface {
	NewSession(ctx context.Context) (Session, error)
}

// Error represents a failed browser action.
type Error struct {
	Action   string
	Selector string
	Cause    error
}

func (e *Error) Error() string {
	if e.Selector != "" {
		return fmt.Sprintf("automation %s %q failed: %v", e.Action, e.Selector, e.Cause)
	}
	return fmt.Sprintf("automation %s failed: %v", e.Action, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
