// Package signature provides helper functions for signing escrow requests
// and recovering the principal that signed them.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// scholarID is added to the recovery id so signatures produced here can't be
// mistaken for Ethereum (27) or Ardan (29) signed messages.
const scholarID = 31

// stampPrefix is hashed together with every signed value.
const stampPrefix = "\x19Scholarship Signed Message:\n32"

// =============================================================================

// Signature is an ECDSA signature in the [R|S|V] format.
type Signature struct {
	V *big.Int `json:"v"`
	R *big.Int `json:"r"`
	S *big.Int `json:"s"`
}

// Sign uses the specified private key to sign the value.
func Sign(value any, privateKey *ecdsa.PrivateKey) (Signature, error) {
	data, err := stamp(value)
	if err != nil {
		return Signature{}, err
	}

	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return Signature{}, err
	}

	// Make sure the key we recover is the key that signed.
	publicKey, err := crypto.SigToPub(data, sig)
	if err != nil {
		return Signature{}, err
	}

	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(publicKey), data, rs) {
		return Signature{}, errors.New("invalid signature")
	}

	return Signature{
		R: new(big.Int).SetBytes(sig[:32]),
		S: new(big.Int).SetBytes(sig[32:64]),
		V: new(big.Int).SetBytes([]byte{sig[64] + scholarID}),
	}, nil
}

// Verify checks the signature values conform to our standards.
func (sig Signature) Verify() error {
	if sig.V == nil || sig.R == nil || sig.S == nil {
		return errors.New("missing signature values")
	}

	if !sig.V.IsUint64() || sig.V.Uint64() < scholarID {
		return errors.New("invalid recovery id")
	}

	recID := sig.V.Uint64() - scholarID
	if recID != 0 && recID != 1 {
		return errors.New("invalid recovery id")
	}

	if !crypto.ValidateSignatureValues(byte(recID), sig.R, sig.S, false) {
		return errors.New("invalid signature values")
	}

	return nil
}

// Signer extracts the address of the account that signed the value.
//
// NOTE: If the exact value that was signed is not provided the wrong address
// is recovered. There is nothing to compare against since the public key is
// extracted from the data and signature.
func (sig Signature) Signer(value any) (string, error) {
	if err := sig.Verify(); err != nil {
		return "", err
	}

	data, err := stamp(value)
	if err != nil {
		return "", err
	}

	publicKey, err := crypto.SigToPub(data, sig.bytes())
	if err != nil {
		return "", err
	}

	return crypto.PubkeyToAddress(*publicKey).String(), nil
}

// String returns the signature as a hex string including the scholar id.
func (sig Signature) String() string {
	if err := sig.Verify(); err != nil {
		return ""
	}

	b := sig.bytes()
	b[64] = byte(sig.V.Uint64())

	return hexutil.Encode(b)
}

// bytes converts the r, s, v values into the original 65 bytes with the
// scholar id removed.
func (sig Signature) bytes() []byte {
	b := make([]byte, crypto.SignatureLength)

	sig.R.FillBytes(b[:32])
	sig.S.FillBytes(b[32:64])
	b[64] = byte(sig.V.Uint64() - scholarID)

	return b
}

// =============================================================================

// Hash returns a unique string for the value.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:])
}

// stamp returns a 32 byte hash of the value with the scholarship stamp
// embedded into the final hash.
func stamp(value any) ([]byte, error) {
	v, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	// Hash the data into 32 bytes so every signed value has the same length.
	valueHash := crypto.Keccak256(v)

	return crypto.Keccak256([]byte(stampPrefix), valueHash), nil
}
