package commands

import (
	"fmt"
	"io"

	"github.com/scholarstream/escrow/foundation/escrow/database"
	"github.com/scholarstream/escrow/foundation/escrow/token"
)

// Token prints the token metadata and supply, or the balance of one account.
func Token(w io.Writer, args []string, tk *token.Ledger) error {
	info, err := tk.Info()
	if err != nil {
		return err
	}

	supply, err := tk.TotalSupply()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Token: %s (%s)  Decimals: %d  Admin: %s  Supply: %s\n", info.Name, info.Symbol, info.Decimals, info.Admin, supply)

	if len(args) == 3 {
		account, err := database.ToAccountID(args[2])
		if err != nil {
			return err
		}

		balance, err := tk.BalanceOf(account)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "Account: %s  Balance: %s\n", account, balance)
	}

	return nil
}
