package token_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/scholarstream/escrow/foundation/escrow/auth"
	"github.com/scholarstream/escrow/foundation/escrow/database"
	"github.com/scholarstream/escrow/foundation/escrow/database/storage/memory"
	"github.com/scholarstream/escrow/foundation/escrow/token"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	admin   = database.AccountID("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")
	student = database.AccountID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
	other   = database.AccountID("0xbEE6ACE826eC3DE1B6349888B9151B92522F7F76")
)

func as(account database.AccountID) context.Context {
	return auth.WithCaller(context.Background(), account)
}

func newLedger(t *testing.T) *token.Ledger {
	strg, err := memory.New()
	if err != nil {
		t.Fatalf("Should be able to construct memory storage: %v", err)
	}

	l, err := token.New(token.Config{Storage: strg, Oracle: auth.Signer{}})
	if err != nil {
		t.Fatalf("Should be able to construct the ledger: %v", err)
	}

	if err := l.Initialize(admin, "Scholarship Token", "BRS"); err != nil {
		t.Fatalf("Should be able to initialize the ledger: %v", err)
	}

	return l
}

func expBalance(t *testing.T, l *token.Ledger, account database.AccountID, exp int64) {
	t.Helper()

	bal, err := l.BalanceOf(account)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to read the balance of %s: %v", failed, account, err)
	}

	if bal.Cmp(big.NewInt(exp)) != 0 {
		t.Fatalf("\t%s\tShould have a balance of %d for %s: got %s", failed, exp, account, bal)
	}
}

// =============================================================================

func Test_Initialize(t *testing.T) {
	l := newLedger(t)

	t.Log("Given the need to initialize the token once.")
	{
		info, err := l.Info()
		if err != nil || info.Name != "Scholarship Token" || info.Symbol != "BRS" || info.Decimals != 7 {
			t.Fatalf("\t%s\tShould read back the metadata: %+v, %v", failed, info, err)
		}
		t.Logf("\t%s\tShould read back the metadata.", success)

		supply, err := l.TotalSupply()
		if err != nil || supply.Sign() != 0 {
			t.Fatalf("\t%s\tShould start with no supply: %s, %v", failed, supply, err)
		}
		t.Logf("\t%s\tShould start with no supply.", success)

		if err := l.Initialize(other, "x", "y"); !errors.Is(err, token.ErrAlreadyInitialized) {
			t.Fatalf("\t%s\tShould refuse a second initialize: %v", failed, err)
		}
		t.Logf("\t%s\tShould refuse a second initialize.", success)
	}
}

func Test_MintTransfer(t *testing.T) {
	l := newLedger(t)

	t.Log("Given the need to mint and transfer tokens.")
	{
		if err := l.Mint(as(admin), student, big.NewInt(500)); err != nil {
			t.Fatalf("\t%s\tShould be able to mint as the admin: %v", failed, err)
		}
		expBalance(t, l, student, 500)
		t.Logf("\t%s\tShould be able to mint as the admin.", success)

		if err := l.Mint(as(student), student, big.NewInt(500)); !errors.Is(err, token.ErrUnauthorized) {
			t.Fatalf("\t%s\tShould refuse to mint for anyone else: %v", failed, err)
		}
		t.Logf("\t%s\tShould refuse to mint for anyone else.", success)

		if err := l.Mint(as(admin), student, big.NewInt(0)); !errors.Is(err, token.ErrInvalidAmount) {
			t.Fatalf("\t%s\tShould refuse to mint nothing: %v", failed, err)
		}
		t.Logf("\t%s\tShould refuse to mint nothing.", success)

		if err := l.Transfer(as(student), student, other, big.NewInt(200)); err != nil {
			t.Fatalf("\t%s\tShould be able to transfer: %v", failed, err)
		}
		expBalance(t, l, student, 300)
		expBalance(t, l, other, 200)
		t.Logf("\t%s\tShould be able to transfer.", success)

		if err := l.Transfer(as(student), student, other, big.NewInt(301)); !errors.Is(err, token.ErrInsufficientBalance) {
			t.Fatalf("\t%s\tShould refuse to overdraw: %v", failed, err)
		}
		t.Logf("\t%s\tShould refuse to overdraw.", success)

		if err := l.Transfer(as(other), student, other, big.NewInt(1)); !errors.Is(err, token.ErrUnauthorized) {
			t.Fatalf("\t%s\tShould refuse a transfer not signed by the sender: %v", failed, err)
		}
		t.Logf("\t%s\tShould refuse a transfer not signed by the sender.", success)

		if err := l.Transfer(as(student), student, student, big.NewInt(100)); err != nil {
			t.Fatalf("\t%s\tShould be able to transfer to yourself: %v", failed, err)
		}
		expBalance(t, l, student, 300)
		t.Logf("\t%s\tShould leave the balance as is on a transfer to yourself.", success)

		supply, err := l.TotalSupply()
		if err != nil || supply.Cmp(big.NewInt(500)) != 0 {
			t.Fatalf("\t%s\tShould keep the supply at 500: %s, %v", failed, supply, err)
		}
		t.Logf("\t%s\tShould keep the supply at 500.", success)
	}
}

func Test_DistributeForProgress(t *testing.T) {
	type table struct {
		progress uint32
		exp      int64
		err      error
	}

	tt := []table{
		{progress: 0, exp: 0},
		{progress: 45, exp: 45},
		{progress: 100, exp: 100},
		{progress: 101, err: token.ErrInvalidProgress},
	}

	t.Log("Given the need to reward progress with tokens.")
	{
		for testID, tst := range tt {
			l := newLedger(t)

			amount, err := l.DistributeForProgress(as(admin), student, tst.progress)
			if tst.err != nil {
				if !errors.Is(err, tst.err) {
					t.Fatalf("\t%s\tTest %d:\tShould fail with %v: %v", failed, testID, tst.err, err)
				}
				t.Logf("\t%s\tTest %d:\tShould fail with %v.", success, testID, tst.err)
				continue
			}

			if err != nil || amount.Cmp(big.NewInt(tst.exp)) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould distribute %d: %s, %v", failed, testID, tst.exp, amount, err)
			}
			expBalance(t, l, student, tst.exp)
			t.Logf("\t%s\tTest %d:\tShould distribute %d.", success, testID, tst.exp)
		}
	}
}
