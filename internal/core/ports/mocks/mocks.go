// Package mocks provides hand-written testify doubles for the core ports.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/ingressolabs/ticketsales/internal/core/domain"
	"github.com/ingressolabs/ticketsales/internal/core/ports"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type CustomerRepository struct {
	mock.Mock
}

func NewCustomerRepository(t testingT) *CustomerRepository {
	m := &CustomerRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *CustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	var c *domain.Customer
	if args.Get(0) != nil {
		c = args.Get(0).(*domain.Customer)
	}
	return c, args.Error(1)
}

func (m *CustomerRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Customer, error) {
	args := m.Called(ctx, userID)
	var c *domain.Customer
	if args.Get(0) != nil {
		c = args.Get(0).(*domain.Customer)
	}
	return c, args.Error(1)
}

type TicketRepository struct {
	mock.Mock
}

func NewTicketRepository(t testingT) *TicketRepository {
	m := &TicketRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *TicketRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Ticket, error) {
	args := m.Called(ctx, ids)
	var tickets []domain.Ticket
	if args.Get(0) != nil {
		tickets = args.Get(0).([]domain.Ticket)
	}
	return tickets, args.Error(1)
}

func (m *TicketRepository) FindByEventID(ctx context.Context, eventID uuid.UUID) ([]domain.Ticket, error) {
	args := m.Called(ctx, eventID)
	var tickets []domain.Ticket
	if args.Get(0) != nil {
		tickets = args.Get(0).([]domain.Ticket)
	}
	return tickets, args.Error(1)
}

func (m *TicketRepository) MarkReserved(ctx context.Context, tx ports.Tx, ids []uuid.UUID) error {
	return m.Called(ctx, tx, ids).Error(0)
}

func (m *TicketRepository) MarkSold(ctx context.Context, tx ports.Tx, ids []uuid.UUID) error {
	return m.Called(ctx, tx, ids).Error(0)
}

func (m *TicketRepository) Release(ctx context.Context, tx ports.Tx, ids []uuid.UUID) error {
	return m.Called(ctx, tx, ids).Error(0)
}

func (m *TicketRepository) CreateBatch(ctx context.Context, tickets []domain.Ticket) error {
	return m.Called(ctx, tickets).Error(0)
}

type PurchaseRepository struct {
	mock.Mock
}

func NewPurchaseRepository(t testingT) *PurchaseRepository {
	m := &PurchaseRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *PurchaseRepository) CreatePending(ctx context.Context, tx ports.Tx, purchase *domain.Purchase) error {
	return m.Called(ctx, tx, purchase).Error(0)
}

func (m *PurchaseRepository) Advance(ctx context.Context, tx ports.Tx, id uuid.UUID, from, to domain.PurchaseStatus) error {
	return m.Called(ctx, tx, id, from, to).Error(0)
}

func (m *PurchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Purchase, error) {
	args := m.Called(ctx, id)
	var p *domain.Purchase
	if args.Get(0) != nil {
		p = args.Get(0).(*domain.Purchase)
	}
	return p, args.Error(1)
}

func (m *PurchaseRepository) FindStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, olderThan, limit)
	var ids []uuid.UUID
	if args.Get(0) != nil {
		ids = args.Get(0).([]uuid.UUID)
	}
	return ids, args.Error(1)
}

func (m *PurchaseRepository) CreateReservations(ctx context.Context, tx ports.Tx, reservations []domain.Reservation) error {
	return m.Called(ctx, tx, reservations).Error(0)
}

// TxRunner runs the transactional closure against a nil handle so that
// repository expectations inside the transaction stay observable. Configure
// Return with a non-nil error to simulate a begin or commit failure instead
// of running the closure.
type TxRunner struct {
	mock.Mock
}

func NewTxRunner(t testingT) *TxRunner {
	m := &TxRunner{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *TxRunner) RunInTx(ctx context.Context, fn func(tx ports.Tx) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(nil)
}

type PaymentGateway struct {
	mock.Mock
}

func NewPaymentGateway(t testingT) *PaymentGateway {
	m := &PaymentGateway{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *PaymentGateway) Charge(ctx context.Context, purchaseID uuid.UUID, profile domain.BillingProfile, amount decimal.Decimal, cardToken string) (*ports.ChargeReceipt, error) {
	args := m.Called(ctx, purchaseID, profile, amount, cardToken)
	var receipt *ports.ChargeReceipt
	if args.Get(0) != nil {
		receipt = args.Get(0).(*ports.ChargeReceipt)
	}
	return receipt, args.Error(1)
}

type AvailabilityCache struct {
	mock.Mock
}

func NewAvailabilityCache(t testingT) *AvailabilityCache {
	m := &AvailabilityCache{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *AvailabilityCache) GetEventTickets(ctx context.Context, eventID uuid.UUID) ([]domain.Ticket, error) {
	args := m.Called(ctx, eventID)
	var tickets []domain.Ticket
	if args.Get(0) != nil {
		tickets = args.Get(0).([]domain.Ticket)
	}
	return tickets, args.Error(1)
}

func (m *AvailabilityCache) SetEventTickets(ctx context.Context, eventID uuid.UUID, tickets []domain.Ticket) error {
	return m.Called(ctx, eventID, tickets).Error(0)
}

func (m *AvailabilityCache) InvalidateEvent(ctx context.Context, eventID uuid.UUID) error {
	return m.Called(ctx, eventID).Error(0)
}

type IdempotencyStore struct {
	mock.Mock
}

func NewIdempotencyStore(t testingT) *IdempotencyStore {
	m := &IdempotencyStore{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *IdempotencyStore) PutChargeKey(ctx context.Context, purchaseID uuid.UUID, key string, ttl time.Duration) error {
	return m.Called(ctx, purchaseID, key, ttl).Error(0)
}

func (m *IdempotencyStore) GetChargeKey(ctx context.Context, purchaseID uuid.UUID) (string, error) {
	args := m.Called(ctx, purchaseID)
	return args.String(0), args.Error(1)
}
