package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var (
	milestoneID uint32
	proof       string
)

var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "Complete a milestone and release its reward",
	Run:   completeRun,
}

func init() {
	rootCmd.AddCommand(completeCmd)
	completeCmd.Flags().Uint64VarP(&scholarshipID, "id", "i", 0, "Id of the scholarship.")
	completeCmd.Flags().Uint32VarP(&milestoneID, "milestone", "m", 0, "Id of the milestone.")
	completeCmd.Flags().StringVarP(&proof, "proof", "f", "", "Proof of completion.")
	completeCmd.MarkFlagRequired("id")
	completeCmd.MarkFlagRequired("milestone")
}

func completeRun(cmd *cobra.Command, args []string) {
	body := struct {
		Proof string `json:"proof"`
	}{
		Proof: proof,
	}

	var resp struct {
		Released string `json:"released"`
	}
	path := fmt.Sprintf("/v1/scholarships/%d/milestones/%d/complete", scholarshipID, milestoneID)
	if err := post(path, body, &resp); err != nil {
		log.Fatal(err)
	}

	fmt.Println("released", resp.Released)
}
