package partner

import "errors"

var (
	// ErrEmptyPartnerID is returned when a partner id is empty.
	ErrEmptyPartnerID = errors.New("partner: empty partner id")
	// ErrUnknownTier is returned when a tier string is not recognized.
	ErrUnknownTier = errors.New("partner: unknown tier")
)
