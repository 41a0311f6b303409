package scholarshipgrp

import (
	"math/big"

	"github.com/scholarstream/escrow/foundation/escrow/database"
	"github.com/scholarstream/escrow/foundation/nameservice"
)

type scholarship struct {
	ID             uint64             `json:"id"`
	Donor          database.AccountID `json:"donor"`
	DonorName      string             `json:"donor_name"`
	Student        database.AccountID `json:"student"`
	StudentName    string             `json:"student_name"`
	TotalAmount    *big.Int           `json:"total_amount"`
	ReleasedAmount *big.Int           `json:"released_amount"`
	TokenType      string             `json:"token_type"`
	IsActive       bool               `json:"is_active"`
	CreatedAt      uint64             `json:"created_at"`
}

func toScholarship(s database.Scholarship, ns *nameservice.NameService) scholarship {
	return scholarship{
		ID:             s.ID,
		Donor:          s.Donor,
		DonorName:      ns.Lookup(s.Donor),
		Student:        s.Student,
		StudentName:    ns.Lookup(s.Student),
		TotalAmount:    s.TotalAmount,
		ReleasedAmount: s.ReleasedAmount,
		TokenType:      s.TokenType,
		IsActive:       s.IsActive,
		CreatedAt:      s.CreatedAt,
	}
}

func toScholarships(list []database.Scholarship, ns *nameservice.NameService) []scholarship {
	out := make([]scholarship, len(list))
	for i, s := range list {
		out[i] = toScholarship(s, ns)
	}
	return out
}

type completeRequest struct {
	Proof string `json:"proof"`
}
