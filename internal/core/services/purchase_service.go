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
	"github.com/ingressolabs/ticketsales/internal/monitoring"
)

type CreatePurchaseRequest struct {
	CustomerID uuid.UUID
	TicketIDs  []uuid.UUID
	CardToken  string
}

// PurchaseService coordinates the purchase workflow: validate, reserve in
// one transaction, charge the gateway outside any transaction, then finalize
// or compensate in a second transaction. Mutual exclusion over tickets comes
// entirely from the status-guarded updates inside the reserve transaction.
type PurchaseService struct {
	customers   ports.CustomerRepository
	tickets     ports.TicketRepository
	purchases   ports.PurchaseRepository
	txr         ports.TxRunner
	gateway     ports.PaymentGateway
	cache       ports.AvailabilityCache
	idempotency ports.IdempotencyStore

	paymentTimeout  time.Duration
	chargeKeyTTL    time.Duration
	holdTimeout     time.Duration
	cleanupInterval time.Duration
}

type PurchaseServiceConfig struct {
	PaymentTimeout         time.Duration
	ChargeKeyTTL           time.Duration
	ReservationHoldTimeout time.Duration
	CleanupInterval        time.Duration
}

func NewPurchaseService(
	customers ports.CustomerRepository,
	tickets ports.TicketRepository,
	purchases ports.PurchaseRepository,
	txr ports.TxRunner,
	gateway ports.PaymentGateway,
	cache ports.AvailabilityCache,
	idempotency ports.IdempotencyStore,
	cfg PurchaseServiceConfig,
) *PurchaseService {
	return &PurchaseService{
		customers:       customers,
		tickets:         tickets,
		purchases:       purchases,
		txr:             txr,
		gateway:         gateway,
		cache:           cache,
		idempotency:     idempotency,
		paymentTimeout:  cfg.PaymentTimeout,
		chargeKeyTTL:    cfg.ChargeKeyTTL,
		holdTimeout:     cfg.ReservationHoldTimeout,
		cleanupInterval: cfg.CleanupInterval,
	}
}

// Create runs the full purchase workflow. On ErrPaymentDeclined the returned
// purchase is canceled and its tickets released; on ErrPaymentTransient the
// purchase is returned still pending with its tickets held, for out-of-band
// reconciliation. Any other error from the reserve phase means nothing was
// written.
func (s *PurchaseService) Create(ctx context.Context, req CreatePurchaseRequest) (*domain.Purchase, error) {
	if len(req.TicketIDs) == 0 {
		return nil, fmt.Errorf("no tickets requested: %w", domain.ErrTicketsNotFound)
	}

	customer, err := s.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	tickets, err := s.tickets.FindByIDs(ctx, req.TicketIDs)
	if err != nil {
		return nil, err
	}

	// Duplicate ids in the request collapse to fewer rows and fail here too.
	if len(tickets) != len(req.TicketIDs) {
		return nil, domain.ErrTicketsNotFound
	}

	total := decimal.Zero
	for _, t := range tickets {
		if !t.IsAvailable() {
			return nil, fmt.Errorf("ticket %s is %s: %w", t.ID, t.Status, domain.ErrTicketsUnavailable)
		}
		total = total.Add(t.Price)
	}

	purchase := &domain.Purchase{
		ID:           uuid.New(),
		CustomerID:   customer.ID,
		TotalAmount:  total,
		Status:       domain.PurchasePending,
		PurchaseDate: time.Now().UTC(),
		TicketIDs:    req.TicketIDs,
	}

	// Reserve phase: purchase row, associations and ticket transitions
	// become visible atomically or not at all. A lost race on any ticket
	// rolls back the whole transaction, leaving no dangling purchase.
	err = s.txr.RunInTx(ctx, func(tx ports.Tx) error {
		if err := s.purchases.CreatePending(ctx, tx, purchase); err != nil {
			return err
		}
		return s.tickets.MarkReserved(ctx, tx, req.TicketIDs)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateEvents(ctx, tickets)
	monitoring.TrackReservation(len(tickets))

	return s.charge(ctx, purchase, customer, tickets, req.CardToken)
}

// charge invokes the gateway and resolves the purchase. No database
// transaction is held across the gateway call.
func (s *PurchaseService) charge(ctx context.Context, purchase *domain.Purchase, customer *domain.Customer, tickets []domain.Ticket, cardToken string) (*domain.Purchase, error) {
	if err := s.idempotency.PutChargeKey(ctx, purchase.ID, "purchase-"+purchase.ID.String(), s.chargeKeyTTL); err != nil {
		// The key only aids later reconciliation; the charge proceeds.
		log.Printf("Failed to park charge key for purchase %s: %v", purchase.ID, err)
	}

	chargeCtx, cancel := context.WithTimeout(ctx, s.paymentTimeout)
	defer cancel()

	start := time.Now()
	_, payErr := s.gateway.Charge(chargeCtx, purchase.ID, customer.BillingProfile(), purchase.TotalAmount, cardToken)

	switch {
	case payErr == nil:
		monitoring.ObserveCharge("accepted", time.Since(start))
		return s.finalizePaid(ctx, purchase, customer, tickets)

	case errors.Is(payErr, domain.ErrPaymentTransient):
		monitoring.ObserveCharge("transient", time.Since(start))
		monitoring.TrackPurchase("pending")
		// The charge outcome is unknown. Leave the purchase pending and
		// the tickets held; the sweeper or an operator reconciles later.
		return purchase, fmt.Errorf("purchase %s left pending: %w", purchase.ID, payErr)

	default:
		monitoring.ObserveCharge("declined", time.Since(start))
		return s.compensateDeclined(ctx, purchase, tickets, payErr)
	}
}

func (s *PurchaseService) finalizePaid(ctx context.Context, purchase *domain.Purchase, customer *domain.Customer, tickets []domain.Ticket) (*domain.Purchase, error) {
	now := time.Now().UTC()
	reservations := make([]domain.Reservation, 0, len(purchase.TicketIDs))
	for _, ticketID := range purchase.TicketIDs {
		reservations = append(reservations, domain.Reservation{
			ID:              uuid.New(),
			CustomerID:      customer.ID,
			TicketID:        ticketID,
			ReservationDate: now,
			Status:          domain.ReservationReserved,
		})
	}

	err := s.txr.RunInTx(ctx, func(tx ports.Tx) error {
		if err := s.tickets.MarkSold(ctx, tx, purchase.TicketIDs); err != nil {
			return err
		}
		if err := s.purchases.Advance(ctx, tx, purchase.ID, domain.PurchasePending, domain.PurchasePaid); err != nil {
			return err
		}
		return s.purchases.CreateReservations(ctx, tx, reservations)
	})
	if err != nil {
		// The customer was charged but the finalize transaction failed
		// (for example the sweeper canceled the hold first). The purchase
		// stays in its stored state for reconciliation against the parked
		// idempotency key.
		return nil, fmt.Errorf("finalize paid purchase %s: %w", purchase.ID, err)
	}

	purchase.Status = domain.PurchasePaid
	s.invalidateEvents(ctx, tickets)
	monitoring.TrackPurchase("paid")

	return purchase, nil
}

func (s *PurchaseService) compensateDeclined(ctx context.Context, purchase *domain.Purchase, tickets []domain.Ticket, payErr error) (*domain.Purchase, error) {
	err := s.txr.RunInTx(ctx, func(tx ports.Tx) error {
		if err := s.purchases.Advance(ctx, tx, purchase.ID, domain.PurchasePending, domain.PurchaseCanceled); err != nil {
			return err
		}
		return s.tickets.Release(ctx, tx, purchase.TicketIDs)
	})
	if err != nil {
		return nil, fmt.Errorf("compensate declined purchase %s: %w", purchase.ID, err)
	}

	purchase.Status = domain.PurchaseCanceled
	s.invalidateEvents(ctx, tickets)
	monitoring.TrackPurchase("canceled")

	return purchase, fmt.Errorf("purchase %s canceled: %w", purchase.ID, payErr)
}

// FindByID returns the committed purchase snapshot with its tickets.
func (s *PurchaseService) FindByID(ctx context.Context, id uuid.UUID) (*domain.Purchase, []domain.Ticket, error) {
	purchase, err := s.purchases.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	tickets, err := s.tickets.FindByIDs(ctx, purchase.TicketIDs)
	if err != nil {
		return nil, nil, err
	}

	return purchase, tickets, nil
}

func (s *PurchaseService) invalidateEvents(ctx context.Context, tickets []domain.Ticket) {
	seen := make(map[uuid.UUID]bool)
	for _, t := range tickets {
		if seen[t.EventID] {
			continue
		}
		seen[t.EventID] = true

		if err := s.cache.InvalidateEvent(ctx, t.EventID); err != nil {
			log.Printf("Failed to invalidate listing cache for event %s: %v", t.EventID, err)
		}
	}
}
