package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var scholarshipCmd = &cobra.Command{
	Use:   "scholarship",
	Short: "Print a scholarship with its milestones and balance",
	Run:   scholarshipRun,
}

func init() {
	rootCmd.AddCommand(scholarshipCmd)
	scholarshipCmd.Flags().Uint64VarP(&scholarshipID, "id", "i", 0, "Id of the scholarship.")
	scholarshipCmd.MarkFlagRequired("id")
}

func scholarshipRun(cmd *cobra.Command, args []string) {
	for _, path := range []string{"", "/milestones", "/balance", "/completion"} {
		var resp any
		if err := get(fmt.Sprintf("/v1/scholarships/%d%s", scholarshipID, path), &resp); err != nil {
			log.Fatal(err)
		}
		printJSON(resp)
	}
}
