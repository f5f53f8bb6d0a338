// Package service implements the application's use cases over the storage
// interface: trip and membership management, expense tracking, balance
// calculation, and the spend-window settlement lifecycle.
package service

import (
	"errors"

	"github.com/mkrv/tripledger/internal/storage"
)

var (
	// ErrNotFound mirrors the storage sentinel so API code can match a
	// single error regardless of which layer produced it.
	ErrNotFound = storage.ErrNotFound

	// ErrForbidden is returned when the acting user lacks the required
	// role or membership. Permission failures reject the whole action
	// before any computation or write runs.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput is returned for requests that fail domain
	// validation (bad currency code, non-positive amount, unknown RSVP
	// value, and so on).
	ErrInvalidInput = errors.New("invalid input")

	// ErrShareMismatch is returned when finalizing an expense whose
	// assignment total does not match its amount and force was not set.
	ErrShareMismatch = errors.New("assignment total does not match expense amount")

	// ErrSpendClosed is returned for expense writes while the trip's
	// spend window is closed.
	ErrSpendClosed = errors.New("spend window is closed")
)
