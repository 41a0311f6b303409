// This program performs administrative tasks against the escrow ledgers. The
// service must be stopped since leveldb allows a single process at a time.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/scholarstream/escrow/app/tooling/admin/commands"
	"github.com/scholarstream/escrow/foundation/escrow/auth"
	"github.com/scholarstream/escrow/foundation/escrow/database/storage/leveldb"
	"github.com/scholarstream/escrow/foundation/escrow/progress"
	"github.com/scholarstream/escrow/foundation/escrow/state"
	"github.com/scholarstream/escrow/foundation/escrow/token"
	"github.com/scholarstream/escrow/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	if len(os.Args) < 2 {
		return errors.New("usage: admin scholarships [id] | reset | token [account] | progress [account]")
	}

	path := os.Getenv("ESCROW_DB_PATH")
	if path == "" {
		path = "zescrow/"
	}

	log.Infow("admin", "build", build, "path", path, "command", os.Args[1])

	return processCommands(os.Args, path)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args []string, path string) error {
	switch args[1] {
	case "scholarships":
		strg, err := leveldb.New(filepath.Join(path, "escrow"))
		if err != nil {
			return err
		}

		st, err := state.New(state.Config{Storage: strg, Oracle: auth.AllowAll{}})
		if err != nil {
			return err
		}
		defer st.Shutdown()

		if err := commands.Scholarships(os.Stdout, args, st); err != nil {
			return fmt.Errorf("getting scholarships: %w", err)
		}

	case "reset":
		strg, err := leveldb.New(filepath.Join(path, "escrow"))
		if err != nil {
			return err
		}

		st, err := state.New(state.Config{Storage: strg, Oracle: auth.AllowAll{}})
		if err != nil {
			return err
		}
		defer st.Shutdown()

		if err := commands.Reset(os.Stdout, st); err != nil {
			return fmt.Errorf("resetting escrow: %w", err)
		}

	case "token":
		strg, err := leveldb.New(filepath.Join(path, "token"))
		if err != nil {
			return err
		}

		tk, err := token.New(token.Config{Storage: strg, Oracle: auth.AllowAll{}})
		if err != nil {
			return err
		}
		defer tk.Close()

		if err := commands.Token(os.Stdout, args, tk); err != nil {
			return fmt.Errorf("getting token: %w", err)
		}

	case "progress":
		strg, err := leveldb.New(filepath.Join(path, "progress"))
		if err != nil {
			return err
		}

		pg, err := progress.New(progress.Config{Storage: strg})
		if err != nil {
			return err
		}
		defer pg.Close()

		if err := commands.Progress(os.Stdout, args, pg); err != nil {
			return fmt.Errorf("getting progress: %w", err)
		}

	default:
		return fmt.Errorf("unknown command %q", args[1])
	}

	return nil
}
