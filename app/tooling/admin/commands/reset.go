package commands

import (
	"fmt"
	"io"

	"github.com/scholarstream/escrow/foundation/escrow/state"
)

// Reset removes every escrow record so the service starts over with an
// empty ledger.
func Reset(w io.Writer, st *state.State) error {
	count, err := st.QueryScholarshipCount()
	if err != nil {
		return err
	}

	if err := st.Truncate(); err != nil {
		return err
	}

	fmt.Fprintf(w, "Removed %d scholarships\n", count)

	return nil
}
