package settlement

import "errors"

var (
	// ErrEmptyPartnerID is returned when partner id is empty.
	ErrEmptyPartnerID = errors.New("settlement: empty partner id")
	// ErrInvalidMonthStart is returned when the settlement month is zero
	// or not aligned to the first day of a month.
	ErrInvalidMonthStart = errors.New("settlement: invalid month start")
	// ErrNegativeValue is returned when a negative amount is provided.
	ErrNegativeValue = errors.New("settlement: negative value")
	// ErrInvalidRate is returned when a commission rate is outside [0, 1].
	ErrInvalidRate = errors.New("settlement: invalid commission rate")
	// ErrNilAggregate is returned when persisting a nil aggregate.
	ErrNilAggregate = errors.New("settlement: nil aggregate")
	// ErrAlreadySettled is returned when a settlement for the same
	// (partner, month) pair already exists. Callers treat it as the
	// normal "skipped" outcome, not a failure.
	ErrAlreadySettled = errors.New("settlement: already settled for month")
	// ErrSettlementNotFound is returned when a settlement is not found.
	ErrSettlementNotFound = errors.New("settlement: not found")
	// ErrBackwardTransition is returned when a status transition would
	// move backward.
	ErrBackwardTransition = errors.New("settlement: backward status transition")
	// ErrUnknownStatus is returned for an unrecognized status string.
	ErrUnknownStatus = errors.New("settlement: unknown status")
)
