package domain

import "errors"

var (
	// ErrNotACustomer means the authenticated user has no billing profile.
	ErrNotACustomer = errors.New("user is not a customer")

	// ErrTicketsNotFound means some requested ticket ids do not exist.
	ErrTicketsNotFound = errors.New("some tickets not found")

	// ErrTicketsUnavailable means some requested tickets are already
	// reserved or sold, including the case where a concurrent purchase won
	// the conditional update race.
	ErrTicketsUnavailable = errors.New("some tickets are not available")

	// ErrPaymentDeclined is a definitive, customer-attributable gateway
	// failure. The purchase is compensated and canceled.
	ErrPaymentDeclined = errors.New("payment declined")

	// ErrPaymentTransient is a retryable gateway failure (timeout, network,
	// 5xx). The purchase stays pending with its tickets held; reconciliation
	// happens out of band.
	ErrPaymentTransient = errors.New("payment gateway temporarily unavailable")

	// ErrStateConflict means a status transition was attempted from an
	// invalid predecessor state.
	ErrStateConflict = errors.New("invalid state transition")

	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrTicketNotFound   = errors.New("ticket not found")
)
