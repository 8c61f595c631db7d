package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer is the billing profile resolved from an authenticated user. It is
// read-only for the purchase engine; registration lives elsewhere.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// BillingProfile is the subset of customer data the payment gateway needs.
type BillingProfile struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func (c *Customer) BillingProfile() BillingProfile {
	return BillingProfile{
		Name:    c.Name,
		Email:   c.Email,
		Address: c.Address,
		Phone:   c.Phone,
	}
}
