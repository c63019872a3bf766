package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount is returned for absent or non-positive amounts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrSelfTransfer is a transfer whose sender and receiver are the same account.
	ErrSelfTransfer = fmt.Errorf("%w: cannot transfer to self", ErrInvalidAmount)

	ErrNotFound          = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrPersistence marks failures of the storage layer. Nothing of the
	// failed operation was committed.
	ErrPersistence = errors.New("persistence failure")
)

type Role string

const (
	RoleAccount  Role = "account"
	RoleSender   Role = "sender"
	RoleReceiver Role = "receiver"
)

type NotFoundError struct {
	Role   Role
	UserID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: user_id=%d", e.Role, e.UserID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrPersistence, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

// IsBusiness reports whether err is an expected business-rule rejection.
func IsBusiness(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientFunds)
}
