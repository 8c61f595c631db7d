package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PurchaseStatus string

const (
	PurchasePending  PurchaseStatus = "pending"
	PurchasePaid     PurchaseStatus = "paid"
	PurchaseError    PurchaseStatus = "error"
	PurchaseCanceled PurchaseStatus = "canceled"
)

// CanAdvanceTo reports whether the transition from s to next is legal.
// A pending purchase may resolve to paid, error or canceled; a paid purchase
// may only be canceled through the compensation path. Terminal states never
// advance again.
func (s PurchaseStatus) CanAdvanceTo(next PurchaseStatus) bool {
	switch s {
	case PurchasePending:
		return next == PurchasePaid || next == PurchaseError || next == PurchaseCanceled
	case PurchasePaid:
		return next == PurchaseCanceled
	default:
		return false
	}
}

// Purchase is a customer's commitment to buy a set of tickets. TotalAmount is
// computed from the per-ticket prices when the purchase is created and never
// recomputed afterwards.
type Purchase struct {
	ID           uuid.UUID       `json:"id"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Status       PurchaseStatus  `json:"status"`
	PurchaseDate time.Time       `json:"purchase_date"`
	TicketIDs    []uuid.UUID     `json:"ticket_ids,omitempty"`
}

type ReservationStatus string

const (
	ReservationReserved ReservationStatus = "reserved"
	ReservationCanceled ReservationStatus = "canceled"
)

// Reservation is an audit record binding a customer to a single ticket during
// the paid phase. A purchase of N tickets produces N reservation rows.
type Reservation struct {
	ID              uuid.UUID         `json:"id"`
	CustomerID      uuid.UUID         `json:"customer_id"`
	TicketID        uuid.UUID         `json:"ticket_id"`
	ReservationDate time.Time         `json:"reservation_date"`
	Status          ReservationStatus `json:"status"`
}
