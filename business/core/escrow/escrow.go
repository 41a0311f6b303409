// Package escrow is the core business API behind the web handlers. It checks
// the signature and nonce of every signed request before handing the call to
// the escrow state, the token ledger or the progress accumulator.
package escrow

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/scholarstream/escrow/foundation/escrow/auth"
	"github.com/scholarstream/escrow/foundation/escrow/progress"
	"github.com/scholarstream/escrow/foundation/escrow/state"
	"github.com/scholarstream/escrow/foundation/escrow/token"
)

// ErrBadSignature is returned when the signer of a request can't be recovered.
var ErrBadSignature = errors.New("bad signature")

// Core manages the set of APIs for escrow access.
type Core struct {
	state    *state.State
	token    *token.Ledger
	progress *progress.Accumulator
}

// NewCore constructs a core for escrow api access.
func NewCore(st *state.State, tk *token.Ledger, pg *progress.Accumulator) *Core {
	return &Core{
		state:    st,
		token:    tk,
		progress: pg,
	}
}

// State returns the escrow state for queries.
func (c *Core) State() *state.State {
	return c.state
}

// Token returns the token ledger for queries.
func (c *Core) Token() *token.Ledger {
	return c.token
}

// Progress returns the progress accumulator.
func (c *Core) Progress() *progress.Accumulator {
	return c.progress
}

// Create records a new scholarship signed by the donor.
func (c *Core) Create(ctx context.Context, signed Signed[CreateRequest]) (uint64, error) {
	ctx, err := authenticate(ctx, c.state, signed)
	if err != nil {
		return 0, err
	}

	req := signed.Request
	return c.state.CreateScholarship(ctx, req.Donor, req.Student, req.TotalAmount, req.TokenType, req.Milestones)
}

// Deposit adds funds to a scholarship on behalf of the signing donor.
func (c *Core) Deposit(ctx context.Context, signed Signed[DepositRequest]) error {
	ctx, err := authenticate(ctx, c.state, signed)
	if err != nil {
		return err
	}

	req := signed.Request
	return c.state.DepositFunds(ctx, req.Donor, req.ScholarshipID, req.Amount)
}

// Cancel deactivates a scholarship on behalf of the signing donor.
func (c *Core) Cancel(ctx context.Context, signed Signed[CancelRequest]) error {
	ctx, err := authenticate(ctx, c.state, signed)
	if err != nil {
		return err
	}

	req := signed.Request
	return c.state.CancelScholarship(ctx, req.Donor, req.ScholarshipID)
}

// Complete releases the reward of a milestone. The proof is not checked.
func (c *Core) Complete(ctx context.Context, id uint64, milestoneID uint32, proof []byte) (*big.Int, error) {
	return c.state.CompleteMilestone(ctx, id, milestoneID, proof)
}

// Mint creates tokens on behalf of the signing admin.
func (c *Core) Mint(ctx context.Context, signed Signed[MintRequest]) error {
	ctx, err := authenticate(ctx, c.state, signed)
	if err != nil {
		return err
	}

	req := signed.Request
	return c.token.Mint(ctx, req.To, req.Amount)
}

// Transfer moves tokens on behalf of the signing sender.
func (c *Core) Transfer(ctx context.Context, signed Signed[TransferRequest]) error {
	ctx, err := authenticate(ctx, c.state, signed)
	if err != nil {
		return err
	}

	req := signed.Request
	return c.token.Transfer(ctx, req.From, req.To, req.Amount)
}

// Distribute rewards a student's progress on behalf of the signing admin.
func (c *Core) Distribute(ctx context.Context, signed Signed[DistributeRequest]) (*big.Int, error) {
	ctx, err := authenticate(ctx, c.state, signed)
	if err != nil {
		return nil, err
	}

	req := signed.Request
	return c.token.DistributeForProgress(ctx, req.Student, req.Progress)
}

// =============================================================================

// authenticate recovers the signer, consumes the nonce and returns a context
// that carries the signer for the authorization oracle.
func authenticate[T Request](ctx context.Context, st *state.State, signed Signed[T]) (context.Context, error) {
	signer, err := signed.Signer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err, ErrBadSignature)
	}

	if err := st.ConsumeNonce(signer, signed.Request.RequestNonce()); err != nil {
		return nil, err
	}

	return auth.WithCaller(ctx, signer), nil
}
