package classify

import "fmt"

// CatalogError represents a failure loading or compiling the provider catalog
type CatalogError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *CatalogError) Error() string {
	msg := e.Message
	if e.Provider != "" {
		msg = fmt.Sprintf("provider %s: %s", e.Provider, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("catalog error: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("catalog error: %s", msg)
}

func (e *CatalogError) Unwrap() error {
	return e.Cause
}
