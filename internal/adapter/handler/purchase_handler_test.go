package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ingressolabs/ticketsales/internal/adapter/handler"
	"github.com/ingressolabs/ticketsales/internal/core/domain"
	"github.com/ingressolabs/ticketsales/internal/core/ports"
	"github.com/ingressolabs/ticketsales/internal/core/ports/mocks"
	"github.com/ingressolabs/ticketsales/internal/core/services"
)

const testSecret = "test-secret"

type handlerFixture struct {
	customers   *mocks.CustomerRepository
	tickets     *mocks.TicketRepository
	purchases   *mocks.PurchaseRepository
	txr         *mocks.TxRunner
	gateway     *mocks.PaymentGateway
	cache       *mocks.AvailabilityCache
	idempotency *mocks.IdempotencyStore
	router      *mux.Router
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	f := &handlerFixture{
		customers:   mocks.NewCustomerRepository(t),
		tickets:     mocks.NewTicketRepository(t),
		purchases:   mocks.NewPurchaseRepository(t),
		txr:         mocks.NewTxRunner(t),
		gateway:     mocks.NewPaymentGateway(t),
		cache:       mocks.NewAvailabilityCache(t),
		idempotency: mocks.NewIdempotencyStore(t),
	}

	svc := services.NewPurchaseService(
		f.customers, f.tickets, f.purchases, f.txr, f.gateway, f.cache, f.idempotency,
		services.PurchaseServiceConfig{
			PaymentTimeout:         time.Second,
			ChargeKeyTTL:           time.Hour,
			ReservationHoldTimeout: 15 * time.Minute,
			CleanupInterval:        time.Minute,
		})

	purchaseHandler := handler.NewPurchaseHandler(svc, f.customers)
	auth := handler.NewAuthMiddleware(testSecret)

	f.router = mux.NewRouter()
	authed := f.router.NewRoute().Subrouter()
	authed.Use(auth.Authenticate)
	authed.HandleFunc("/purchases", purchaseHandler.Create).Methods(http.MethodPost)
	authed.HandleFunc("/purchases/{id}", purchaseHandler.GetByID).Methods(http.MethodGet)

	return f
}

func signToken(t *testing.T, userID uuid.UUID) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestCreatePurchaseEndpoint_Unauthorized(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/purchases", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreatePurchaseEndpoint_NotACustomer(t *testing.T) {
	f := newHandlerFixture(t)

	userID := uuid.New()
	f.customers.On("FindByUserID", mock.Anything, userID).Return(nil, domain.ErrNotACustomer)

	body := `{"ticket_ids": ["` + uuid.NewString() + `"], "card_token": "tok_visa"}`
	req := httptest.NewRequest(http.MethodPost, "/purchases", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signToken(t, userID))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "customer")
}

func TestCreatePurchaseEndpoint_Success(t *testing.T) {
	f := newHandlerFixture(t)

	userID := uuid.New()
	eventID := uuid.New()
	customer := &domain.Customer{ID: uuid.New(), UserID: userID, Name: "Ana"}
	ticket := domain.Ticket{
		ID:      uuid.New(),
		EventID: eventID,
		Price:   decimal.RequireFromString("50.00"),
		Status:  domain.TicketAvailable,
	}

	f.customers.On("FindByUserID", mock.Anything, userID).Return(customer, nil)
	f.customers.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
	f.tickets.On("FindByIDs", mock.Anything, []uuid.UUID{ticket.ID}).Return([]domain.Ticket{ticket}, nil)
	f.txr.On("RunInTx", mock.Anything, mock.Anything).Return(nil)
	f.purchases.On("CreatePending", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.tickets.On("MarkReserved", mock.Anything, mock.Anything, []uuid.UUID{ticket.ID}).Return(nil)
	f.cache.On("InvalidateEvent", mock.Anything, eventID).Return(nil)
	f.idempotency.On("PutChargeKey", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.gateway.On("Charge", mock.Anything, mock.Anything, mock.Anything, mock.Anything, "tok_visa").
		Return(&ports.ChargeReceipt{TransactionID: "txn_1"}, nil)
	f.tickets.On("MarkSold", mock.Anything, mock.Anything, []uuid.UUID{ticket.ID}).Return(nil)
	f.purchases.On("Advance", mock.Anything, mock.Anything, mock.Anything, domain.PurchasePending, domain.PurchasePaid).Return(nil)
	f.purchases.On("CreateReservations", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	// The handler re-reads the committed snapshot for the response body.
	f.purchases.On("FindByID", mock.Anything, mock.AnythingOfType("uuid.UUID")).
		Return(&domain.Purchase{
			ID:           uuid.New(),
			CustomerID:   customer.ID,
			TotalAmount:  decimal.RequireFromString("50.00"),
			Status:       domain.PurchasePaid,
			PurchaseDate: time.Now().UTC(),
			TicketIDs:    []uuid.UUID{ticket.ID},
		}, nil)

	body := fmt.Sprintf(`{"ticket_ids": [%q], "card_token": "tok_visa"}`, ticket.ID)
	req := httptest.NewRequest(http.MethodPost, "/purchases", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signToken(t, userID))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(domain.PurchasePaid), resp["status"])
	assert.Equal(t, customer.ID.String(), resp["customer_id"])
}

func TestCreatePurchaseEndpoint_Conflict(t *testing.T) {
	f := newHandlerFixture(t)

	userID := uuid.New()
	customer := &domain.Customer{ID: uuid.New(), UserID: userID}
	ticketID := uuid.New()
	reserved := domain.Ticket{ID: ticketID, EventID: uuid.New(), Status: domain.TicketReserved}

	f.customers.On("FindByUserID", mock.Anything, userID).Return(customer, nil)
	f.customers.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
	f.tickets.On("FindByIDs", mock.Anything, []uuid.UUID{ticketID}).Return([]domain.Ticket{reserved}, nil)

	body := fmt.Sprintf(`{"ticket_ids": [%q], "card_token": "tok_visa"}`, ticketID)
	req := httptest.NewRequest(http.MethodPost, "/purchases", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signToken(t, userID))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetPurchaseEndpoint_NotFound(t *testing.T) {
	f := newHandlerFixture(t)

	userID := uuid.New()
	id := uuid.New()
	f.purchases.On("FindByID", mock.Anything, id).Return(nil, domain.ErrPurchaseNotFound)

	req := httptest.NewRequest(http.MethodGet, "/purchases/"+id.String(), nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, userID))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthMiddleware_RejectsBadSignature(t *testing.T) {
	f := newHandlerFixture(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": uuid.NewString(),
	})
	signed, err := token.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/purchases", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserIDFromContext_Empty(t *testing.T) {
	_, ok := handler.UserIDFromContext(context.Background())
	assert.False(t, ok)
}
