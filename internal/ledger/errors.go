package ledger

import "errors"

// ErrorKind is the outcome of a ledger operation.
// The zero value (Success) means the operation was applied.
type ErrorKind string

// Operation outcomes. The strings are compared verbatim against the
// expected errors recorded in traces.
const (
	Success             ErrorKind = ""
	InvalidAmount       ErrorKind = "Amount should be greater than zero"
	InsufficientBalance ErrorKind = "Balance is too low"
	UnknownInvestment   ErrorKind = "No investment with this id"
	NotOwner            ErrorKind = "Seller can't sell an investment they don't own"
)

// Sentinel errors matching each failing ErrorKind, for use with errors.Is.
var (
	ErrInvalidAmount       = errors.New(string(InvalidAmount))
	ErrInsufficientBalance = errors.New(string(InsufficientBalance))
	ErrUnknownInvestment   = errors.New(string(UnknownInvestment))
	ErrNotOwner            = errors.New(string(NotOwner))
)

// String returns the error text, or "" for Success.
func (k ErrorKind) String() string {
	return string(k)
}

// OK reports whether the operation succeeded.
func (k ErrorKind) OK() bool {
	return k == Success
}

// Err converts the outcome to a Go error. Success maps to nil.
// Kinds outside the taxonomy (e.g. an expected error read from a trace
// that the ledger never produces) map to a fresh error with the same text.
func (k ErrorKind) Err() error {
	switch k {
	case Success:
		return nil
	case InvalidAmount:
		return ErrInvalidAmount
	case InsufficientBalance:
		return ErrInsufficientBalance
	case UnknownInvestment:
		return ErrUnknownInvestment
	case NotOwner:
		return ErrNotOwner
	default:
		return errors.New(string(k))
	}
}

// Known reports whether k is one of the outcomes the ledger can produce.
func (k ErrorKind) Known() bool {
	switch k {
	case Success, InvalidAmount, InsufficientBalance, UnknownInvestment, NotOwner:
		return true
	}
	return false
}
