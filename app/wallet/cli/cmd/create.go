package cmd

import (
	"fmt"
	"log"
	"math/big"
	"strconv"
	"strings"

	"github.com/scholarstream/escrow/business/core/escrow"
	"github.com/scholarstream/escrow/foundation/escrow/database"
	"github.com/scholarstream/escrow/foundation/escrow/milestone"
	"github.com/spf13/cobra"
)

var (
	student    string
	total      string
	tokenType  string
	milestones []string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a scholarship funded by this account",
	Run:   createRun,
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringVarP(&student, "student", "s", "", "Account of the student.")
	createCmd.Flags().StringVarP(&total, "total", "t", "", "Total amount of the scholarship.")
	createCmd.Flags().StringVarP(&tokenType, "token", "k", "USDC", "Token the scholarship is paid in.")
	createCmd.Flags().StringArrayVarP(&milestones, "milestone", "m", nil, "Milestone as id:reward:title[:proof_type], repeatable.")
	createCmd.MarkFlagRequired("student")
	createCmd.MarkFlagRequired("total")
}

func createRun(cmd *cobra.Command, args []string) {
	privateKey, donor, err := loadAccount()
	if err != nil {
		log.Fatal(err)
	}

	totalAmount, ok := new(big.Int).SetString(total, 10)
	if !ok {
		log.Fatalf("invalid total %q", total)
	}

	set := make(milestone.Set, 0, len(milestones))
	for _, m := range milestones {
		ms, err := parseMilestone(m)
		if err != nil {
			log.Fatal(err)
		}
		set = append(set, ms)
	}

	nonce, err := nextNonce(donor)
	if err != nil {
		log.Fatal(err)
	}

	signed, err := escrow.Sign(escrow.CreateRequest{
		Nonce:       nonce,
		Donor:       donor,
		Student:     database.AccountID(student),
		TotalAmount: totalAmount,
		TokenType:   tokenType,
		Milestones:  set,
	}, privateKey)
	if err != nil {
		log.Fatal(err)
	}

	var resp struct {
		ID uint64 `json:"id"`
	}
	if err := post("/v1/scholarships", signed, &resp); err != nil {
		log.Fatal(err)
	}

	fmt.Println("scholarship:", resp.ID)
	fmt.Println("signature:", signed.Signature.String())
}

// parseMilestone reads a milestone in the id:reward:title[:proof_type] form.
func parseMilestone(s string) (milestone.Milestone, error) {
	parts := strings.SplitN(s, ":", 4)
	if len(parts) < 3 {
		return milestone.Milestone{}, fmt.Errorf("milestone %q: want id:reward:title[:proof_type]", s)
	}

	id, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return milestone.Milestone{}, fmt.Errorf("milestone %q: id: %w", s, err)
	}

	reward, ok := new(big.Int).SetString(parts[1], 10)
	if !ok {
		return milestone.Milestone{}, fmt.Errorf("milestone %q: invalid reward", s)
	}

	ms := milestone.Milestone{
		ID:           uint32(id),
		Title:        parts[2],
		RewardAmount: reward,
	}
	if len(parts) == 4 {
		ms.ProofType = parts[3]
	}

	return ms, nil
}
