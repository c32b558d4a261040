// Package errs provides types and support related to web v1 functionality.
package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/blockchain/address"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/wallet"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (re *Trusted) Error() string {
	return re.Err.Error()
}

// Unwrap provides access to the wrapped error.
func (re *Trusted) Unwrap() error {
	return re.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var re *Trusted
	return errors.As(err, &re)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var re *Trusted
	if !errors.As(err, &re) {
		return nil
	}
	return re
}

// FromLedger maps the errors the ledger reports for bad input to a trusted
// error. Anything else is returned unchanged and treated as a server error.
func FromLedger(err error) error {
	switch {
	case errors.Is(err, state.ErrNotFound),
		errors.Is(err, wallet.ErrNotFound):
		return NewTrusted(err, http.StatusNotFound)

	case errors.Is(err, address.ErrInvalidAddress),
		errors.Is(err, state.ErrInsufficientFunds),
		errors.Is(err, state.ErrInvalidAmount),
		errors.Is(err, state.ErrUnverifiedTx),
		errors.Is(err, state.ErrDoubleSpend),
		errors.Is(err, state.ErrInvalidTx),
		errors.Is(err, database.ErrPrevTxNotFound):
		return NewTrusted(err, http.StatusBadRequest)
	}

	return err
}
