// Package commands contains the functionality for the admin commands.
package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/scholarstream/escrow/foundation/escrow/database"
	"github.com/scholarstream/escrow/foundation/escrow/state"
)

// Scholarships prints every scholarship, or one with its milestones.
func Scholarships(w io.Writer, args []string, st *state.State) error {
	if len(args) == 3 {
		id, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[2], err)
		}

		s, err := st.QueryScholarship(id)
		if err != nil {
			return err
		}
		printScholarship(w, s)

		set, err := st.QueryMilestones(id)
		if err != nil {
			return err
		}

		for _, m := range set {
			fmt.Fprintf(w, "  Milestone: %d  Title: %s  Reward: %s  Completed: %t\n", m.ID, m.Title, m.Reward(), m.IsCompleted)
		}

		balance, err := st.QueryBalance(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  Balance: %s\n", balance)

		return nil
	}

	count, err := st.QueryScholarshipCount()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Scholarships: %d\n\n", count)

	list, err := st.QueryAllScholarships()
	if err != nil {
		return err
	}

	for _, s := range list {
		printScholarship(w, s)
	}

	return nil
}

func printScholarship(w io.Writer, s database.Scholarship) {
	fmt.Fprintf(w, "ID: %d  Donor: %s  Student: %s  Total: %s  Released: %s  Token: %s  Active: %t\n",
		s.ID, s.Donor, s.Student, s.TotalAmount, s.ReleasedAmount, s.TokenType, s.IsActive)
}
