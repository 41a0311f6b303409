package database

import "math/big"

// Scholarship is a donor to student fund commitment tracked by the escrow.
// ReleasedAmount only grows, by exactly one milestone reward per completion.
type Scholarship struct {
	ID             uint64    `json:"id"`
	Donor          AccountID `json:"donor"`
	Student        AccountID `json:"student"`
	TotalAmount    *big.Int  `json:"total_amount"`
	ReleasedAmount *big.Int  `json:"released_amount"`
	TokenType      string    `json:"token_type"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      uint64    `json:"created_at"`
}

// Clone returns a copy that shares no memory with the original.
func (s Scholarship) Clone() Scholarship {
	s.TotalAmount = cloneAmount(s.TotalAmount)
	s.ReleasedAmount = cloneAmount(s.ReleasedAmount)
	return s
}

// cloneAmount copies the amount, treating nil as zero.
func cloneAmount(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
