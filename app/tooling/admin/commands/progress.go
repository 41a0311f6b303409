package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/scholarstream/escrow/foundation/escrow/database"
	"github.com/scholarstream/escrow/foundation/escrow/progress"
)

// Progress prints the progress totals, or the progress of one student.
func Progress(w io.Writer, args []string, pg *progress.Accumulator) error {
	if len(args) == 3 {
		account, err := database.ToAccountID(args[2])
		if err != nil {
			return err
		}

		info, err := pg.StudentInfo(account)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "Student: %s  Progress: %d  LastUpdate: %d\n", info.Address, info.TotalProgress, info.LastUpdate)
		return nil
	}

	total, err := pg.TotalProgress()
	if err != nil {
		return err
	}

	last, err := pg.LastStudent()
	if err != nil && !errors.Is(err, progress.ErrNotFound) {
		return err
	}

	fmt.Fprintf(w, "Total: %d  Last: %s\n", total, last)

	all, err := pg.AllStudents()
	if err != nil {
		return err
	}

	for _, s := range all {
		fmt.Fprintln(w, "Student:", s)
	}

	return nil
}
