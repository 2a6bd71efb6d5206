package resolver

import (
	"errors"
	"fmt"
)

// ErrInvalidIdentity marks an identity the resolver cannot act on:
// nil, missing the federated key, or missing the email needed to
// create a new account. Not retryable.
var ErrInvalidIdentity = errors.New("invalid identity")

// StoreError reports a failed account store operation. The caller
// decides retry policy; the resolver never swallows these.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("account store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
