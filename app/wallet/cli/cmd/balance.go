package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your reward token balance.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) {
	_, accountID, err := loadAccount()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("For Account:", accountID)

	var resp struct {
		Balance string `json:"balance"`
	}
	if err := get(fmt.Sprintf("/v1/token/balances/%s", accountID), &resp); err != nil {
		log.Fatal(err)
	}

	fmt.Println(resp.Balance)
}
