package validate_test

import (
	"testing"

	"github.com/scholarstream/escrow/business/sys/validate"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Check(t *testing.T) {
	type request struct {
		Donor  string `json:"donor" validate:"required,account"`
		Amount string `json:"amount" validate:"required"`
	}

	t.Log("Given the need to validate request models.")
	{
		err := validate.Check(request{Donor: "bill"})
		if !validate.IsFieldErrors(err) {
			t.Fatalf("\t%s\tShould get field errors: %v", failed, err)
		}

		fields := validate.GetFieldErrors(err).Fields()
		if _, exists := fields["donor"]; !exists {
			t.Fatalf("\t%s\tShould name the donor field by its json tag: %v", failed, fields)
		}
		if _, exists := fields["amount"]; !exists {
			t.Fatalf("\t%s\tShould report the missing amount: %v", failed, fields)
		}
		t.Logf("\t%s\tShould get an error per failing field.", success)

		ok := request{Donor: "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", Amount: "10"}
		if err := validate.Check(ok); err != nil {
			t.Fatalf("\t%s\tShould accept a valid request: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept a valid request.", success)
	}
}
