package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ingressolabs/ticketsales/internal/core/domain"
	"github.com/ingressolabs/ticketsales/internal/core/ports/mocks"
	"github.com/ingressolabs/ticketsales/internal/core/services"
)

func TestProvision(t *testing.T) {
	ticketRepo := mocks.NewTicketRepository(t)
	listingCache := mocks.NewAvailabilityCache(t)
	svc := services.NewInventoryService(ticketRepo, listingCache)

	ctx := context.Background()
	eventID := uuid.New()
	price := decimal.RequireFromString("50.00")

	ticketRepo.On("CreateBatch", ctx, mock.AnythingOfType("[]domain.Ticket")).
		Run(func(args mock.Arguments) {
			tickets := args.Get(1).([]domain.Ticket)
			require.Len(t, tickets, 3)
			for _, tk := range tickets {
				assert.Equal(t, eventID, tk.EventID)
				assert.Equal(t, domain.TicketAvailable, tk.Status)
				assert.True(t, tk.Price.Equal(price))
			}
		}).
		Return(nil)
	listingCache.On("InvalidateEvent", ctx, eventID).Return(nil)

	tickets, err := svc.Provision(ctx, eventID, 3, price)

	require.NoError(t, err)
	assert.Len(t, tickets, 3)
}

func TestProvision_RejectsBadInput(t *testing.T) {
	ticketRepo := mocks.NewTicketRepository(t)
	listingCache := mocks.NewAvailabilityCache(t)
	svc := services.NewInventoryService(ticketRepo, listingCache)

	ctx := context.Background()
	eventID := uuid.New()

	_, err := svc.Provision(ctx, eventID, 0, decimal.NewFromInt(10))
	assert.Error(t, err)

	_, err = svc.Provision(ctx, eventID, 101, decimal.NewFromInt(10))
	assert.Error(t, err)

	_, err = svc.Provision(ctx, eventID, 1, decimal.NewFromInt(-1))
	assert.Error(t, err)

	ticketRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestListByEvent_CacheHit(t *testing.T) {
	ticketRepo := mocks.NewTicketRepository(t)
	listingCache := mocks.NewAvailabilityCache(t)
	svc := services.NewInventoryService(ticketRepo, listingCache)

	ctx := context.Background()
	eventID := uuid.New()
	cached := availableTickets(eventID, "20.00", "20.00")

	listingCache.On("GetEventTickets", ctx, eventID).Return(cached, nil)

	tickets, err := svc.ListByEvent(ctx, eventID)

	require.NoError(t, err)
	assert.Equal(t, cached, tickets)
	ticketRepo.AssertNotCalled(t, "FindByEventID", mock.Anything, mock.Anything)
}

func TestListByEvent_CacheMissPopulates(t *testing.T) {
	ticketRepo := mocks.NewTicketRepository(t)
	listingCache := mocks.NewAvailabilityCache(t)
	svc := services.NewInventoryService(ticketRepo, listingCache)

	ctx := context.Background()
	eventID := uuid.New()
	stored := availableTickets(eventID, "20.00")

	listingCache.On("GetEventTickets", ctx, eventID).Return(nil, nil)
	ticketRepo.On("FindByEventID", ctx, eventID).Return(stored, nil)
	listingCache.On("SetEventTickets", ctx, eventID, stored).Return(nil)

	tickets, err := svc.ListByEvent(ctx, eventID)

	require.NoError(t, err)
	assert.Equal(t, stored, tickets)
}
