package cmd

import (
	"fmt"
	"log"

	"github.com/scholarstream/escrow/business/core/escrow"
	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel a scholarship nothing was released from",
	Run:   cancelRun,
}

func init() {
	rootCmd.AddCommand(cancelCmd)
	cancelCmd.Flags().Uint64VarP(&scholarshipID, "id", "i", 0, "Id of the scholarship.")
	cancelCmd.MarkFlagRequired("id")
}

func cancelRun(cmd *cobra.Command, args []string) {
	privateKey, donor, err := loadAccount()
	if err != nil {
		log.Fatal(err)
	}

	nonce, err := nextNonce(donor)
	if err != nil {
		log.Fatal(err)
	}

	signed, err := escrow.Sign(escrow.CancelRequest{
		Nonce:         nonce,
		Donor:         donor,
		ScholarshipID: scholarshipID,
	}, privateKey)
	if err != nil {
		log.Fatal(err)
	}

	if err := post(fmt.Sprintf("/v1/scholarships/%d/cancel", scholarshipID), signed, nil); err != nil {
		log.Fatal(err)
	}

	fmt.Println("cancelled scholarship", scholarshipID)
	fmt.Println("signature:", signed.Signature.String())
}
