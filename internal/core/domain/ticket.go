package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TicketStatus string

const (
	TicketAvailable TicketStatus = "available"
	TicketReserved  TicketStatus = "reserved"
	TicketSold      TicketStatus = "sold"
)

// Ticket is a sellable unit of event admission. Its status only ever moves
// available -> reserved -> sold, or reserved -> available on release.
type Ticket struct {
	ID        uuid.UUID       `json:"id"`
	EventID   uuid.UUID       `json:"event_id"`
	Location  string          `json:"location"`
	Price     decimal.Decimal `json:"price"`
	Status    TicketStatus    `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

func (t *Ticket) IsAvailable() bool {
	return t.Status == TicketAvailable
}
