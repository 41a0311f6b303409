package escrow

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/scholarstream/escrow/foundation/escrow/database"
	"github.com/scholarstream/escrow/foundation/escrow/milestone"
	"github.com/scholarstream/escrow/foundation/escrow/signature"
)

// Request is implemented by every request that must be signed. The nonce
// must grow with every request an account signs.
type Request interface {
	RequestNonce() uint64
}

// CreateRequest asks for a new scholarship funded by the donor.
type CreateRequest struct {
	Nonce       uint64             `json:"nonce" validate:"required"`
	Donor       database.AccountID `json:"donor" validate:"required,account"`
	Student     database.AccountID `json:"student" validate:"required,account"`
	TotalAmount *big.Int           `json:"total_amount" validate:"required"`
	TokenType   string             `json:"token_type" validate:"required"`
	Milestones  milestone.Set      `json:"milestones"`
}

// RequestNonce implements the Request interface.
func (r CreateRequest) RequestNonce() uint64 { return r.Nonce }

// DepositRequest adds funds to a scholarship.
type DepositRequest struct {
	Nonce         uint64             `json:"nonce" validate:"required"`
	Donor         database.AccountID `json:"donor" validate:"required,account"`
	ScholarshipID uint64             `json:"scholarship_id" validate:"required"`
	Amount        *big.Int           `json:"amount" validate:"required"`
}

// RequestNonce implements the Request interface.
func (r DepositRequest) RequestNonce() uint64 { return r.Nonce }

// CancelRequest deactivates a scholarship.
type CancelRequest struct {
	Nonce         uint64             `json:"nonce" validate:"required"`
	Donor         database.AccountID `json:"donor" validate:"required,account"`
	ScholarshipID uint64             `json:"scholarship_id" validate:"required"`
}

// RequestNonce implements the Request interface.
func (r CancelRequest) RequestNonce() uint64 { return r.Nonce }

// MintRequest creates reward tokens. It must be signed by the token admin.
type MintRequest struct {
	Nonce  uint64             `json:"nonce" validate:"required"`
	To     database.AccountID `json:"to" validate:"required,account"`
	Amount *big.Int           `json:"amount" validate:"required"`
}

// RequestNonce implements the Request interface.
func (r MintRequest) RequestNonce() uint64 { return r.Nonce }

// TransferRequest moves reward tokens. It must be signed by the sender.
type TransferRequest struct {
	Nonce  uint64             `json:"nonce" validate:"required"`
	From   database.AccountID `json:"from" validate:"required,account"`
	To     database.AccountID `json:"to" validate:"required,account"`
	Amount *big.Int           `json:"amount" validate:"required"`
}

// RequestNonce implements the Request interface.
func (r TransferRequest) RequestNonce() uint64 { return r.Nonce }

// DistributeRequest rewards a student's progress with tokens. It must be
// signed by the token admin.
type DistributeRequest struct {
	Nonce    uint64             `json:"nonce" validate:"required"`
	Student  database.AccountID `json:"student" validate:"required,account"`
	Progress uint32             `json:"progress" validate:"lte=100"`
}

// RequestNonce implements the Request interface.
func (r DistributeRequest) RequestNonce() uint64 { return r.Nonce }

// =============================================================================

// Signed is a request with the signature of the account that made it. This
// is how clients like the wallet submit changes to the escrow.
type Signed[T Request] struct {
	Request T `json:"request"`
	signature.Signature
}

// Sign uses the specified private key to sign the request.
func Sign[T Request](req T, privateKey *ecdsa.PrivateKey) (Signed[T], error) {
	sig, err := signature.Sign(req, privateKey)
	if err != nil {
		return Signed[T]{}, err
	}

	signed := Signed[T]{
		Request:   req,
		Signature: sig,
	}

	return signed, nil
}

// Signer extracts the account that signed the request.
func (s Signed[T]) Signer() (database.AccountID, error) {
	address, err := s.Signature.Signer(s.Request)
	if err != nil {
		return "", err
	}

	return database.AccountID(address), nil
}

// String implements the fmt.Stringer interface for logging.
func (s Signed[T]) String() string {
	from, err := s.Signer()
	if err != nil {
		from = "unknown"
	}

	return fmt.Sprintf("%s:%d", from, s.Request.RequestNonce())
}
