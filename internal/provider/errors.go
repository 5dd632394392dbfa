package provider

import (
	"errors"
	"fmt"
)

// ErrNotFound marks semantic absence: the provider answered, but the thing
// asked for does not exist (unknown breed, pet without photos).
var ErrNotFound = errors.New("not found")

// FetchError is the single error shape clients surface: it wraps transport
// failures, non-decodable responses, and provider-reported absence alike,
// so the dispatcher never sees a raw transport fault.
type FetchError struct {
	Provider string
	Op       string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func fetchErr(provider, op string, err error) error {
	return &FetchError{Provider: provider, Op: op, Err: err}
}
