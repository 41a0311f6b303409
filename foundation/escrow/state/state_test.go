package state_test

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/scholarstream/escrow/foundation/escrow/auth"
	"github.com/scholarstream/escrow/foundation/escrow/database"
	"github.com/scholarstream/escrow/foundation/escrow/database/storage/memory"
	"github.com/scholarstream/escrow/foundation/escrow/milestone"
	"github.com/scholarstream/escrow/foundation/escrow/signature"
	"github.com/scholarstream/escrow/foundation/escrow/state"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	donor    = database.AccountID("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")
	stranger = database.AccountID("0xbEE6ACE826eC3DE1B6349888B9151B92522F7F76")
	student  = database.AccountID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
	student2 = database.AccountID("0x6Fe6CF3c8fF57c58d24BfC869668F48BCbDb3BD9")
)

var createdAt = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func ifErrFailNow(t *testing.T, err error) {
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

func newState(t *testing.T, policy state.Policy) *state.State {
	strg, err := memory.New()
	ifErrFailNow(t, err)

	st, err := state.New(state.Config{
		Storage: strg,
		Oracle:  auth.Signer{},
		Policy:  policy,
		Now:     func() time.Time { return createdAt },
		EvHandler: func(v string, args ...any) {
			t.Logf(v, args...)
		},
	})
	ifErrFailNow(t, err)

	return st
}

func as(account database.AccountID) context.Context {
	return auth.WithCaller(context.Background(), account)
}

func oneMilestone(reward int64) milestone.Set {
	return milestone.Set{
		{ID: 1, Title: "First term", RequiredProgress: 50, RewardAmount: big.NewInt(reward), ProofType: milestone.ProofExam},
	}
}

// =============================================================================

func Test_CreateDepositComplete(t *testing.T) {
	st := newState(t, state.Policy{})

	t.Log("Given the need to release a milestone reward from a funded scholarship.")
	{
		id, err := st.CreateScholarship(as(donor), donor, student, big.NewInt(1000), "USDC", oneMilestone(250))
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create the scholarship: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to create the scholarship.", success)

		if id != 1 {
			t.Fatalf("\t%s\tShould get id 1 for the first scholarship: got %d", failed, id)
		}
		t.Logf("\t%s\tShould get id 1 for the first scholarship.", success)

		sch, err := st.QueryScholarship(id)
		ifErrFailNow(t, err)
		if sch.ReleasedAmount.Sign() != 0 || !sch.IsActive || sch.CreatedAt != uint64(createdAt.Unix()) {
			t.Fatalf("\t%s\tShould start active with nothing released: %+v", failed, sch)
		}
		t.Logf("\t%s\tShould start active with nothing released.", success)

		if err := st.DepositFunds(as(donor), donor, id, big.NewInt(1000)); err != nil {
			t.Fatalf("\t%s\tShould be able to deposit: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to deposit.", success)

		reward, err := st.CompleteMilestone(context.Background(), id, 1, []byte("transcript"))
		if err != nil {
			t.Fatalf("\t%s\tShould be able to complete the milestone: %v", failed, err)
		}
		if reward.Cmp(big.NewInt(250)) != 0 {
			t.Fatalf("\t%s\tShould release 250: got %s", failed, reward)
		}
		t.Logf("\t%s\tShould release 250.", success)

		bal, err := st.QueryBalance(id)
		ifErrFailNow(t, err)
		if bal.Cmp(big.NewInt(750)) != 0 {
			t.Fatalf("\t%s\tShould leave a balance of 750: got %s", failed, bal)
		}
		t.Logf("\t%s\tShould leave a balance of 750.", success)

		sch, err = st.QueryScholarship(id)
		ifErrFailNow(t, err)
		if sch.ReleasedAmount.Cmp(big.NewInt(250)) != 0 {
			t.Fatalf("\t%s\tShould record 250 released: got %s", failed, sch.ReleasedAmount)
		}
		t.Logf("\t%s\tShould record 250 released.", success)

		pct, err := st.QueryCompletionPercentage(id)
		ifErrFailNow(t, err)
		if pct != 100 {
			t.Fatalf("\t%s\tShould be 100%% complete: got %d", failed, pct)
		}
		t.Logf("\t%s\tShould be 100%% complete.", success)

		_, err = st.CompleteMilestone(context.Background(), id, 1, nil)
		if !errors.Is(err, state.ErrAlreadyCompleted) {
			t.Fatalf("\t%s\tShould refuse a second completion: %v", failed, err)
		}
		t.Logf("\t%s\tShould refuse a second completion.", success)

		sch, err = st.QueryScholarship(id)
		ifErrFailNow(t, err)
		bal, err = st.QueryBalance(id)
		ifErrFailNow(t, err)
		if sch.ReleasedAmount.Cmp(big.NewInt(250)) != 0 || bal.Cmp(big.NewInt(750)) != 0 {
			t.Fatalf("\t%s\tShould not change funds on a refused completion: released %s balance %s", failed, sch.ReleasedAmount, bal)
		}
		t.Logf("\t%s\tShould not change funds on a refused completion.", success)
	}
}

func Test_CompleteWithoutDeposit(t *testing.T) {
	st := newState(t, state.Policy{})

	t.Log("Given the need to complete a milestone before any funds are deposited.")
	{
		id, err := st.CreateScholarship(as(donor), donor, student, big.NewInt(1000), "USDC", oneMilestone(250))
		ifErrFailNow(t, err)

		_, err = st.CompleteMilestone(context.Background(), id, 1, nil)
		if !errors.Is(err, state.ErrInsufficientFunds) {
			t.Fatalf("\t%s\tShould fail with insufficient funds: %v", failed, err)
		}
		t.Logf("\t%s\tShould fail with insufficient funds.", success)

		set, err := st.QueryMilestones(id)
		ifErrFailNow(t, err)
		if set[0].IsCompleted {
			t.Fatalf("\t%s\tShould leave the milestone incomplete.", failed)
		}
		t.Logf("\t%s\tShould leave the milestone incomplete.", success)

		ifErrFailNow(t, st.DepositFunds(as(donor), donor, id, big.NewInt(250)))

		if _, err := st.CompleteMilestone(context.Background(), id, 1, nil); err != nil {
			t.Fatalf("\t%s\tShould complete once funded: %v", failed, err)
		}
		t.Logf("\t%s\tShould complete once funded.", success)

		bal, err := st.QueryBalance(id)
		ifErrFailNow(t, err)
		if bal.Sign() != 0 {
			t.Fatalf("\t%s\tShould drain the balance to exactly 0: got %s", failed, bal)
		}
		t.Logf("\t%s\tShould drain the balance to exactly 0.", success)
	}
}

func Test_Cancel(t *testing.T) {
	st := newState(t, state.Policy{})

	t.Log("Given the need to cancel scholarships.")
	{
		t.Logf("\tTest 0:\tWhen nothing has been released.")
		{
			id, err := st.CreateScholarship(as(donor), donor, student, big.NewInt(1000), "USDC", oneMilestone(250))
			ifErrFailNow(t, err)
			ifErrFailNow(t, st.DepositFunds(as(donor), donor, id, big.NewInt(400)))

			if err := st.CancelScholarship(as(donor), donor, id); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to cancel: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to cancel.", success)

			sch, err := st.QueryScholarship(id)
			ifErrFailNow(t, err)
			if sch.IsActive {
				t.Fatalf("\t%s\tTest 0:\tShould be inactive.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould be inactive.", success)

			bal, err := st.QueryBalance(id)
			ifErrFailNow(t, err)
			if bal.Cmp(big.NewInt(400)) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould keep the balance recorded: got %s", failed, bal)
			}
			t.Logf("\t%s\tTest 0:\tShould keep the balance recorded.", success)

			_, err = st.CompleteMilestone(context.Background(), id, 1, nil)
			if !errors.Is(err, state.ErrInvalidState) {
				t.Fatalf("\t%s\tTest 0:\tShould refuse completion when inactive: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould refuse completion when inactive.", success)
		}

		t.Logf("\tTest 1:\tWhen a reward has been released.")
		{
			id, err := st.CreateScholarship(as(donor), donor, student, big.NewInt(1000), "USDC", oneMilestone(250))
			ifErrFailNow(t, err)
			ifErrFailNow(t, st.DepositFunds(as(donor), donor, id, big.NewInt(1000)))
			_, err = st.CompleteMilestone(context.Background(), id, 1, nil)
			ifErrFailNow(t, err)

			err = st.CancelScholarship(as(donor), donor, id)
			if !errors.Is(err, state.ErrInvalidState) {
				t.Fatalf("\t%s\tTest 1:\tShould refuse to cancel: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould refuse to cancel.", success)

			sch, err := st.QueryScholarship(id)
			ifErrFailNow(t, err)
			if !sch.IsActive {
				t.Fatalf("\t%s\tTest 1:\tShould stay active.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould stay active.", success)
		}

		t.Logf("\tTest 2:\tWhen someone other than the donor cancels.")
		{
			id, err := st.CreateScholarship(as(donor), donor, student, big.NewInt(1000), "USDC", nil)
			ifErrFailNow(t, err)

			if err := st.CancelScholarship(as(stranger), stranger, id); !errors.Is(err, state.ErrForbidden) {
				t.Fatalf("\t%s\tTest 2:\tShould refuse a stranger: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould refuse a stranger.", success)

			if err := st.CancelScholarship(as(stranger), donor, id); !errors.Is(err, state.ErrForbidden) {
				t.Fatalf("\t%s\tTest 2:\tShould refuse a stranger claiming to be the donor: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould refuse a stranger claiming to be the donor.", success)

			if err := st.CancelScholarship(as(donor), donor, 99); !errors.Is(err, state.ErrNotFound) {
				t.Fatalf("\t%s\tTest 2:\tShould not find an unknown scholarship: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould not find an unknown scholarship.", success)
		}
	}
}

func Test_DepositByStranger(t *testing.T) {
	st := newState(t, state.Policy{})

	t.Log("Given the need to only accept deposits from the donor.")
	{
		id, err := st.CreateScholarship(as(donor), donor, student, big.NewInt(1000), "USDC", oneMilestone(250))
		ifErrFailNow(t, err)
		ifErrFailNow(t, st.DepositFunds(as(donor), donor, id, big.NewInt(100)))

		if err := st.DepositFunds(as(stranger), stranger, id, big.NewInt(500)); !errors.Is(err, state.ErrForbidden) {
			t.Fatalf("\t%s\tShould refuse a deposit from another account: %v", failed, err)
		}
		t.Logf("\t%s\tShould refuse a deposit from another account.", success)

		if err := st.DepositFunds(as(stranger), donor, id, big.NewInt(500)); !errors.Is(err, state.ErrForbidden) {
			t.Fatalf("\t%s\tShould refuse a deposit not signed by the donor: %v", failed, err)
		}
		t.Logf("\t%s\tShould refuse a deposit not signed by the donor.", success)

		bal, err := st.QueryBalance(id)
		ifErrFailNow(t, err)
		if bal.Cmp(big.NewInt(100)) != 0 {
			t.Fatalf("\t%s\tShould leave the balance unchanged: got %s", failed, bal)
		}
		t.Logf("\t%s\tShould leave the balance unchanged.", success)

		if err := st.DepositFunds(as(donor), donor, 42, big.NewInt(1)); !errors.Is(err, state.ErrNotFound) {
			t.Fatalf("\t%s\tShould not find an unknown scholarship: %v", failed, err)
		}
		t.Logf("\t%s\tShould not find an unknown scholarship.", success)
	}
}

func Test_Listings(t *testing.T) {
	st := newState(t, state.Policy{})

	t.Log("Given the need to list scholarships by student and donor.")
	{
		for _, s := range []database.AccountID{student, student2, student, student} {
			_, err := st.CreateScholarship(as(donor), donor, s, big.NewInt(100), "USDC", nil)
			ifErrFailNow(t, err)
		}
		_, err := st.CreateScholarship(as(stranger), stranger, student2, big.NewInt(100), "USDC", nil)
		ifErrFailNow(t, err)

		list, err := st.QueryStudentScholarships(student)
		ifErrFailNow(t, err)

		exp := []uint64{1, 3, 4}
		if len(list) != len(exp) {
			t.Fatalf("\t%s\tShould find 3 scholarships for the student: got %d", failed, len(list))
		}
		for i, sch := range list {
			if sch.ID != exp[i] {
				t.Fatalf("\t%s\tShould list in ascending id order: got %d, exp %d", failed, sch.ID, exp[i])
			}
		}
		t.Logf("\t%s\tShould list 3 scholarships in ascending id order.", success)

		list, err = st.QueryDonorScholarships(donor)
		ifErrFailNow(t, err)
		if len(list) != 4 {
			t.Fatalf("\t%s\tShould find 4 scholarships for the donor: got %d", failed, len(list))
		}
		t.Logf("\t%s\tShould find 4 scholarships for the donor.", success)

		lower := database.AccountID("0xf01813e4b85e178a83e29b8e7bf26bd830a25f32")
		list, err = st.QueryStudentScholarships(lower)
		ifErrFailNow(t, err)
		if len(list) != 3 {
			t.Fatalf("\t%s\tShould match the student regardless of case: got %d", failed, len(list))
		}
		t.Logf("\t%s\tShould match the student regardless of case.", success)

		all, err := st.QueryAllScholarships()
		ifErrFailNow(t, err)
		if len(all) != 5 {
			t.Fatalf("\t%s\tShould list all 5 scholarships: got %d", failed, len(all))
		}
		t.Logf("\t%s\tShould list all 5 scholarships.", success)

		count, err := st.QueryScholarshipCount()
		ifErrFailNow(t, err)
		if count != 5 {
			t.Fatalf("\t%s\tShould count 5 scholarships: got %d", failed, count)
		}
		t.Logf("\t%s\tShould count 5 scholarships.", success)

		list, err = st.QueryStudentScholarships(stranger)
		ifErrFailNow(t, err)
		if list == nil || len(list) != 0 {
			t.Fatalf("\t%s\tShould return an empty list for an unknown student.", failed)
		}
		t.Logf("\t%s\tShould return an empty list for an unknown student.", success)
	}
}

func Test_CreateUnauthorized(t *testing.T) {
	st := newState(t, state.Policy{})

	t.Log("Given the need to only create scholarships signed by the donor.")
	{
		_, err := st.CreateScholarship(as(stranger), donor, student, big.NewInt(100), "USDC", nil)
		if !errors.Is(err, state.ErrUnauthorized) {
			t.Fatalf("\t%s\tShould refuse creation: %v", failed, err)
		}
		t.Logf("\t%s\tShould refuse creation.", success)

		count, err := st.QueryScholarshipCount()
		ifErrFailNow(t, err)
		if count != 0 {
			t.Fatalf("\t%s\tShould not consume an id: got %d", failed, count)
		}
		t.Logf("\t%s\tShould not consume an id.", success)
	}
}

func Test_QueryDefaults(t *testing.T) {
	st := newState(t, state.Policy{})

	t.Log("Given the need to query unknown and empty scholarships.")
	{
		if _, err := st.QueryScholarship(7); !errors.Is(err, state.ErrNotFound) {
			t.Fatalf("\t%s\tShould not find an unknown scholarship: %v", failed, err)
		}
		t.Logf("\t%s\tShould not find an unknown scholarship.", success)

		if _, err := st.QueryMilestones(7); !errors.Is(err, state.ErrNotFound) {
			t.Fatalf("\t%s\tShould not find unknown milestones: %v", failed, err)
		}
		t.Logf("\t%s\tShould not find unknown milestones.", success)

		bal, err := st.QueryBalance(7)
		if err != nil || bal.Sign() != 0 {
			t.Fatalf("\t%s\tShould default an unknown balance to 0: %s, %v", failed, bal, err)
		}
		t.Logf("\t%s\tShould default an unknown balance to 0.", success)

		pct, err := st.QueryCompletionPercentage(7)
		if err != nil || pct != 0 {
			t.Fatalf("\t%s\tShould default an unknown completion to 0: %d, %v", failed, pct, err)
		}
		t.Logf("\t%s\tShould default an unknown completion to 0.", success)

		id, err := st.CreateScholarship(as(donor), donor, student, big.NewInt(100), "USDC", nil)
		ifErrFailNow(t, err)

		pct, err = st.QueryCompletionPercentage(id)
		if err != nil || pct != 0 {
			t.Fatalf("\t%s\tShould be 0%% for a scholarship without milestones: %d, %v", failed, pct, err)
		}
		t.Logf("\t%s\tShould be 0%% for a scholarship without milestones.", success)

		if _, err := st.CompleteMilestone(context.Background(), id, 1, nil); !errors.Is(err, state.ErrNotFound) {
			t.Fatalf("\t%s\tShould not find a milestone that does not exist: %v", failed, err)
		}
		t.Logf("\t%s\tShould not find a milestone that does not exist.", success)
	}
}

func Test_DuplicateMilestoneIDs(t *testing.T) {
	st := newState(t, state.Policy{})

	set := milestone.Set{
		{ID: 1, Title: "a", RewardAmount: big.NewInt(10)},
		{ID: 1, Title: "b", RewardAmount: big.NewInt(20)},
	}

	id, err := st.CreateScholarship(as(donor), donor, student, big.NewInt(100), "USDC", set)
	ifErrFailNow(t, err)
	ifErrFailNow(t, st.DepositFunds(as(donor), donor, id, big.NewInt(100)))

	t.Log("Given the need to complete milestones that share an id.")
	{
		reward, err := st.CompleteMilestone(context.Background(), id, 1, nil)
		if err != nil || reward.Cmp(big.NewInt(10)) != 0 {
			t.Fatalf("\t%s\tShould release the first match: %s, %v", failed, reward, err)
		}
		t.Logf("\t%s\tShould release the first match.", success)

		if _, err := st.CompleteMilestone(context.Background(), id, 1, nil); !errors.Is(err, state.ErrAlreadyCompleted) {
			t.Fatalf("\t%s\tShould never reach the second milestone with the same id: %v", failed, err)
		}
		t.Logf("\t%s\tShould never reach the second milestone with the same id.", success)

		pct, err := st.QueryCompletionPercentage(id)
		if err != nil || pct != 50 {
			t.Fatalf("\t%s\tShould be 50%% complete: %d, %v", failed, pct, err)
		}
		t.Logf("\t%s\tShould be 50%% complete.", success)
	}
}

func Test_DepositPolicy(t *testing.T) {
	type table struct {
		name   string
		policy state.Policy
		amount int64
		err    error
	}

	tt := []table{
		{name: "negative-allowed", policy: state.Policy{}, amount: -50},
		{name: "beyond-total-allowed", policy: state.Policy{}, amount: 5000},
		{name: "negative-rejected", policy: state.Policy{RejectNonPositiveDeposits: true}, amount: -50, err: state.ErrInvalidAmount},
		{name: "zero-rejected", policy: state.Policy{RejectNonPositiveDeposits: true}, amount: 0, err: state.ErrInvalidAmount},
		{name: "beyond-total-capped", policy: state.Policy{CapDepositsAtTotal: true}, amount: 901, err: state.ErrInvalidAmount},
		{name: "up-to-total", policy: state.Policy{CapDepositsAtTotal: true}, amount: 900},
	}

	t.Log("Given the need to apply the deposit policy.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				st := newState(t, tst.policy)

				id, err := st.CreateScholarship(as(donor), donor, student, big.NewInt(1000), "USDC", nil)
				ifErrFailNow(t, err)
				ifErrFailNow(t, st.DepositFunds(as(donor), donor, id, big.NewInt(100)))

				err = st.DepositFunds(as(donor), donor, id, big.NewInt(tst.amount))
				if tst.err == nil && err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould accept the deposit: %v", failed, testID, err)
				}
				if tst.err != nil && !errors.Is(err, tst.err) {
					t.Fatalf("\t%s\tTest %d:\tShould refuse the deposit: %v", failed, testID, err)
				}

				exp := big.NewInt(100)
				if tst.err == nil {
					exp.Add(exp, big.NewInt(tst.amount))
				}

				bal, err := st.QueryBalance(id)
				ifErrFailNow(t, err)
				if bal.Cmp(exp) != 0 {
					t.Fatalf("\t%s\tTest %d:\tShould have balance %s: got %s", failed, testID, exp, bal)
				}
				t.Logf("\t%s\tTest %d:\tShould have balance %s.", success, testID, exp)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_ReleaseConservation(t *testing.T) {
	st := newState(t, state.Policy{})

	set := milestone.Set{
		{ID: 1, RewardAmount: big.NewInt(300)},
		{ID: 2, RewardAmount: big.NewInt(300)},
		{ID: 3, RewardAmount: big.NewInt(400)},
	}

	id, err := st.CreateScholarship(as(donor), donor, student, big.NewInt(1000), "USDC", set)
	ifErrFailNow(t, err)
	ifErrFailNow(t, st.DepositFunds(as(donor), donor, id, big.NewInt(700)))

	type step struct {
		mid    uint32
		reward int64
		err    error
	}

	steps := []step{
		{mid: 1, reward: 300},
		{mid: 3, reward: 400},
		{mid: 2, err: state.ErrInsufficientFunds},
		{mid: 3, err: state.ErrAlreadyCompleted},
	}

	deposited := big.NewInt(700)
	prevReleased := big.NewInt(0)

	t.Log("Given the need to conserve deposits across releases.")
	{
		for stepID, stp := range steps {
			t.Logf("\tTest %d:\tWhen completing milestone %d.", stepID, stp.mid)
			{
				reward, err := st.CompleteMilestone(context.Background(), id, stp.mid, nil)
				switch {
				case stp.err != nil:
					if !errors.Is(err, stp.err) {
						t.Fatalf("\t%s\tTest %d:\tShould fail with %v: %v", failed, stepID, stp.err, err)
					}
					t.Logf("\t%s\tTest %d:\tShould fail with %v.", success, stepID, stp.err)

				default:
					if err != nil || reward.Cmp(big.NewInt(stp.reward)) != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould release %d: %s, %v", failed, stepID, stp.reward, reward, err)
					}
					t.Logf("\t%s\tTest %d:\tShould release %d.", success, stepID, stp.reward)
				}

				sch, err := st.QueryScholarship(id)
				ifErrFailNow(t, err)
				bal, err := st.QueryBalance(id)
				ifErrFailNow(t, err)

				if bal.Sign() < 0 {
					t.Fatalf("\t%s\tTest %d:\tShould never go negative: got %s", failed, stepID, bal)
				}
				if sch.ReleasedAmount.Cmp(prevReleased) < 0 {
					t.Fatalf("\t%s\tTest %d:\tShould never decrease released: got %s, prev %s", failed, stepID, sch.ReleasedAmount, prevReleased)
				}
				if sum := new(big.Int).Add(bal, sch.ReleasedAmount); sum.Cmp(deposited) != 0 {
					t.Fatalf("\t%s\tTest %d:\tShould conserve deposits: balance %s + released %s != %s", failed, stepID, bal, sch.ReleasedAmount, deposited)
				}
				t.Logf("\t%s\tTest %d:\tShould conserve deposits.", success, stepID)

				prevReleased = sch.ReleasedAmount
			}
		}

		if prevReleased.Cmp(big.NewInt(700)) != 0 {
			t.Fatalf("\t%s\tShould release only what was funded: got %s", failed, prevReleased)
		}
		t.Logf("\t%s\tShould release only what was funded.", success)

		pct, err := st.QueryCompletionPercentage(id)
		if err != nil || pct != 66 {
			t.Fatalf("\t%s\tShould round the completion down: %d, %v", failed, pct, err)
		}
		t.Logf("\t%s\tShould round the completion down.", success)
	}
}

func Test_Nonce(t *testing.T) {
	st := newState(t, state.Policy{})

	t.Log("Given the need to refuse replayed requests.")
	{
		ifErrFailNow(t, st.ConsumeNonce(donor, 1))
		ifErrFailNow(t, st.ConsumeNonce(donor, 5))
		t.Logf("\t%s\tShould accept growing nonces.", success)

		if err := st.ConsumeNonce(donor, 5); !errors.Is(err, state.ErrForbidden) {
			t.Fatalf("\t%s\tShould refuse a replayed nonce: %v", failed, err)
		}
		t.Logf("\t%s\tShould refuse a replayed nonce.", success)

		if err := st.ConsumeNonce(donor, 3); !errors.Is(err, state.ErrForbidden) {
			t.Fatalf("\t%s\tShould refuse an older nonce: %v", failed, err)
		}
		t.Logf("\t%s\tShould refuse an older nonce.", success)

		n, err := st.QueryNonce(donor)
		if err != nil || n != 5 {
			t.Fatalf("\t%s\tShould keep the last nonce: %d, %v", failed, n, err)
		}
		t.Logf("\t%s\tShould keep the last nonce.", success)
	}
}

func Test_Events(t *testing.T) {
	strg, err := memory.New()
	ifErrFailNow(t, err)

	var events []string
	st, err := state.New(state.Config{
		Storage: strg,
		Oracle:  auth.Signer{},
		EvHandler: func(v string, args ...any) {
			events = append(events, fmt.Sprintf(v, args...))
		},
	})
	ifErrFailNow(t, err)

	set := milestone.Set{
		{ID: 1, RewardAmount: big.NewInt(300)},
		{ID: 2, RewardAmount: big.NewInt(400)},
	}

	t.Log("Given the need to report escrow changes as events.")
	{
		id, err := st.CreateScholarship(as(donor), donor, student, big.NewInt(1000), "USDC", set)
		ifErrFailNow(t, err)
		ifErrFailNow(t, st.DepositFunds(as(donor), donor, id, big.NewInt(1000)))

		proof := []byte("transcript")
		_, err = st.CompleteMilestone(context.Background(), id, 1, proof)
		ifErrFailNow(t, err)

		if len(events) != 3 {
			t.Fatalf("\t%s\tShould send one event per change: %v", failed, events)
		}
		t.Logf("\t%s\tShould send one event per change.", success)

		if !strings.Contains(events[0], "rewards[700]") {
			t.Fatalf("\t%s\tShould report the milestone rewards on create: %s", failed, events[0])
		}
		t.Logf("\t%s\tShould report the milestone rewards on create.", success)

		if !strings.Contains(events[2], "proof["+signature.Hash(proof)+"]") {
			t.Fatalf("\t%s\tShould report the proof fingerprint on complete: %s", failed, events[2])
		}
		t.Logf("\t%s\tShould report the proof fingerprint on complete.", success)
	}
}
