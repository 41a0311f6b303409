package cmd

import (
	"fmt"
	"log"
	"math/big"

	"github.com/scholarstream/escrow/business/core/escrow"
	"github.com/spf13/cobra"
)

var (
	scholarshipID uint64
	amount        string
)

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Deposit funds into a scholarship",
	Run:   depositRun,
}

func init() {
	rootCmd.AddCommand(depositCmd)
	depositCmd.Flags().Uint64VarP(&scholarshipID, "id", "i", 0, "Id of the scholarship.")
	depositCmd.Flags().StringVarP(&amount, "amount", "v", "", "Amount to deposit.")
	depositCmd.MarkFlagRequired("id")
	depositCmd.MarkFlagRequired("amount")
}

func depositRun(cmd *cobra.Command, args []string) {
	privateKey, donor, err := loadAccount()
	if err != nil {
		log.Fatal(err)
	}

	value, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		log.Fatalf("invalid amount %q", amount)
	}

	nonce, err := nextNonce(donor)
	if err != nil {
		log.Fatal(err)
	}

	signed, err := escrow.Sign(escrow.DepositRequest{
		Nonce:         nonce,
		Donor:         donor,
		ScholarshipID: scholarshipID,
		Amount:        value,
	}, privateKey)
	if err != nil {
		log.Fatal(err)
	}

	if err := post(fmt.Sprintf("/v1/scholarships/%d/deposit", scholarshipID), signed, nil); err != nil {
		log.Fatal(err)
	}

	fmt.Println("deposited", value, "into scholarship", scholarshipID)
	fmt.Println("signature:", signed.Signature.String())
}
