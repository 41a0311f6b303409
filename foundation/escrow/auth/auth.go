// Package auth answers whether an operation was authorized by a principal.
// The HTTP layer recovers the signer of a request and places it into the
// context, the oracle then compares that signer to the principal an
// operation claims to act for.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/scholarstream/escrow/foundation/escrow/database"
)

// ErrNotAuthorized is returned when the principal did not authorize the call.
var ErrNotAuthorized = errors.New("not authorized")

// Oracle represents the behavior required to confirm a principal authorized
// the current invocation.
type Oracle interface {
	Authorize(ctx context.Context, principal database.AccountID) error
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ctx context.Context, principal database.AccountID) error

// Authorize calls f(ctx, principal).
func (f OracleFunc) Authorize(ctx context.Context, principal database.AccountID) error {
	return f(ctx, principal)
}

// =============================================================================

type ctxKey int

const callerKey ctxKey = 1

// WithCaller returns a context carrying the account that signed the request.
func WithCaller(ctx context.Context, caller database.AccountID) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFrom returns the account that signed the request, if any.
func CallerFrom(ctx context.Context) (database.AccountID, bool) {
	caller, ok := ctx.Value(callerKey).(database.AccountID)
	return caller, ok
}

// =============================================================================

// Signer authorizes a principal when it matches the caller stored in the
// context by WithCaller.
type Signer struct{}

// Authorize implements the Oracle interface.
func (Signer) Authorize(ctx context.Context, principal database.AccountID) error {
	caller, ok := CallerFrom(ctx)
	if !ok {
		return fmt.Errorf("no caller in context: %w", ErrNotAuthorized)
	}

	p, err := database.ToAccountID(string(principal))
	if err != nil {
		return fmt.Errorf("principal %q: %w", principal, ErrNotAuthorized)
	}

	c, err := database.ToAccountID(string(caller))
	if err != nil {
		return fmt.Errorf("caller %q: %w", caller, ErrNotAuthorized)
	}

	if p != c {
		return fmt.Errorf("caller %s is not %s: %w", c, p, ErrNotAuthorized)
	}

	return nil
}

// AllowAll authorizes every principal. It is used by tests and tooling that
// talk to the engine directly.
type AllowAll struct{}

// Authorize implements the Oracle interface.
func (AllowAll) Authorize(ctx context.Context, principal database.AccountID) error {
	return nil
}
