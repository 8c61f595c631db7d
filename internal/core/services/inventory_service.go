package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ingressolabs/ticketsales/internal/core/domain"
	"github.com/ingressolabs/ticketsales/internal/core/ports"
)

const maxTicketsPerRequest = 100

// InventoryService covers the partner side of the inventory: provisioning
// tickets for an event and serving the public listing through the cache.
type InventoryService struct {
	tickets ports.TicketRepository
	cache   ports.AvailabilityCache
}

func NewInventoryService(tickets ports.TicketRepository, cache ports.AvailabilityCache) *InventoryService {
	return &InventoryService{tickets: tickets, cache: cache}
}

func (s *InventoryService) Provision(ctx context.Context, eventID uuid.UUID, numTickets int, price decimal.Decimal) ([]domain.Ticket, error) {
	if numTickets <= 0 {
		return nil, errors.New("number of tickets must be greater than 0")
	}

	if numTickets > maxTicketsPerRequest {
		return nil, fmt.Errorf("cannot create more than %d tickets at once", maxTicketsPerRequest)
	}

	if price.IsNegative() {
		return nil, errors.New("ticket price must not be negative")
	}

	now := time.Now().UTC()
	tickets := make([]domain.Ticket, 0, numTickets)
	for i := 0; i < numTickets; i++ {
		tickets = append(tickets, domain.Ticket{
			ID:        uuid.New(),
			EventID:   eventID,
			Location:  fmt.Sprintf("Location %d", i+1),
			Price:     price,
			Status:    domain.TicketAvailable,
			CreatedAt: now,
		})
	}

	if err := s.tickets.CreateBatch(ctx, tickets); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateEvent(ctx, eventID); err != nil {
		log.Printf("Failed to invalidate listing cache for event %s: %v", eventID, err)
	}

	return tickets, nil
}

// ListByEvent serves the listing from the cache when possible. The cache
// never feeds the purchase workflow, so a slightly stale listing is
// harmless: availability is re-checked inside the reserve transaction.
func (s *InventoryService) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Ticket, error) {
	cached, err := s.cache.GetEventTickets(ctx, eventID)
	if err != nil {
		log.Printf("Listing cache read failed for event %s: %v", eventID, err)
	} else if cached != nil {
		return cached, nil
	}

	tickets, err := s.tickets.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetEventTickets(ctx, eventID, tickets); err != nil {
		log.Printf("Listing cache write failed for event %s: %v", eventID, err)
	}

	return tickets, nil
}
