package validate_test

import (
	"testing"

	"github.com/ardanlabs/ledger/business/sys/validate"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type payment struct {
	From  string `json:"from" validate:"required"`
	To    string `json:"to" validate:"required"`
	Value uint64 `json:"value" validate:"gt=0"`
}

func Test_Check(t *testing.T) {
	t.Log("Given the need to validate request models.")
	{
		good := payment{
			From:  "1BoatSLRHtKNngkdXEeobR76b53LETtpyT",
			To:    "1BoatSLRHtKNngkdXEeobR76b53LETtpyT",
			Value: 10,
		}
		if err := validate.Check(good); err != nil {
			t.Fatalf("\t%s\tShould accept a valid model: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept a valid model.", success)

		bad := payment{Value: 0}
		err := validate.Check(bad)
		if !validate.IsFieldErrors(err) {
			t.Fatalf("\t%s\tShould get field errors: %v", failed, err)
		}
		t.Logf("\t%s\tShould get field errors.", success)

		fields := validate.GetFieldErrors(err).Fields()
		for _, name := range []string{"from", "to", "value"} {
			if _, exists := fields[name]; !exists {
				t.Fatalf("\t%s\tShould report the %q field: %v", failed, name, fields)
			}
		}
		t.Logf("\t%s\tShould report every bad field by its json name.", success)
	}
}
