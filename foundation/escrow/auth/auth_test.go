package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/scholarstream/escrow/foundation/escrow/auth"
	"github.com/scholarstream/escrow/foundation/escrow/database"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Signer(t *testing.T) {
	type table struct {
		name      string
		caller    database.AccountID
		setCaller bool
		principal database.AccountID
		ok        bool
	}

	const donor = database.AccountID("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")

	tt := []table{
		{name: "same", caller: donor, setCaller: true, principal: donor, ok: true},
		{name: "case", caller: "0xdd6b972ffcc631a62cae1bb9d80b7ff429c8eba4", setCaller: true, principal: donor, ok: true},
		{name: "other", caller: "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32", setCaller: true, principal: donor, ok: false},
		{name: "missing", principal: donor, ok: false},
		{name: "garbage", caller: "bill", setCaller: true, principal: donor, ok: false},
	}

	t.Log("Given the need to authorize a principal against the request signer.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				ctx := context.Background()
				if tst.setCaller {
					ctx = auth.WithCaller(ctx, tst.caller)
				}

				err := auth.Signer{}.Authorize(ctx, tst.principal)
				switch {
				case tst.ok && err != nil:
					t.Fatalf("\t%s\tTest %d:\tShould authorize: %v", failed, testID, err)
				case !tst.ok && !errors.Is(err, auth.ErrNotAuthorized):
					t.Fatalf("\t%s\tTest %d:\tShould not authorize: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould get the expected answer.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}
