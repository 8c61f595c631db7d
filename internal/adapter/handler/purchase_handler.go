package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/ingressolabs/ticketsales/internal/core/domain"
	"github.com/ingressolabs/ticketsales/internal/core/ports"
	"github.com/ingressolabs/ticketsales/internal/core/services"
)

type PurchaseHandler struct {
	svc       *services.PurchaseService
	customers ports.CustomerRepository
}

func NewPurchaseHandler(svc *services.PurchaseService, customers ports.CustomerRepository) *PurchaseHandler {
	return &PurchaseHandler{svc: svc, customers: customers}
}

type createPurchaseRequest struct {
	TicketIDs []uuid.UUID `json:"ticket_ids"`
	CardToken string      `json:"card_token"`
}

type purchaseResponse struct {
	ID           uuid.UUID       `json:"id"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Status       string          `json:"status"`
	PurchaseDate string          `json:"purchase_date"`
	Tickets      []domain.Ticket `json:"tickets"`
}

func (h *PurchaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	customer, err := h.customers.FindByUserID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotACustomer) {
			writeJSONError(w, http.StatusBadRequest, "user needs to be a customer to make a purchase")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var req createPurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if req.CardToken == "" {
		writeJSONError(w, http.StatusBadRequest, "card_token is required")
		return
	}

	purchase, err := h.svc.Create(r.Context(), services.CreatePurchaseRequest{
		CustomerID: customer.ID,
		TicketIDs:  req.TicketIDs,
		CardToken:  req.CardToken,
	})
	if err != nil {
		h.writePurchaseError(w, purchase, err)
		return
	}

	snapshot, tickets, err := h.svc.FindByID(r.Context(), purchase.ID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toPurchaseResponse(snapshot, tickets))
}

func (h *PurchaseHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid purchase id")
		return
	}

	purchase, tickets, err := h.svc.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrPurchaseNotFound) {
			writeJSONError(w, http.StatusNotFound, "purchase not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	json.NewEncoder(w).Encode(toPurchaseResponse(purchase, tickets))
}

// writePurchaseError maps the engine's error taxonomy to HTTP statuses. The
// payment failure cases still carry the purchase id so the client (or a
// support operator) can follow up on the record.
func (h *PurchaseHandler) writePurchaseError(w http.ResponseWriter, purchase *domain.Purchase, err error) {
	body := map[string]any{"error": err.Error()}
	if purchase != nil {
		body["purchase_id"] = purchase.ID
		body["status"] = purchase.Status
	}

	var status int
	switch {
	case errors.Is(err, domain.ErrNotACustomer):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrTicketsNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrTicketsUnavailable), errors.Is(err, domain.ErrStateConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrPaymentDeclined):
		status = http.StatusPaymentRequired
	case errors.Is(err, domain.ErrPaymentTransient):
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
		body = map[string]any{"error": "internal server error"}
	}

	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func toPurchaseResponse(p *domain.Purchase, tickets []domain.Ticket) purchaseResponse {
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return purchaseResponse{
		ID:           p.ID,
		CustomerID:   p.CustomerID,
		TotalAmount:  p.TotalAmount,
		Status:       string(p.Status),
		PurchaseDate: p.PurchaseDate.UTC().Format(time.RFC3339),
		Tickets:      tickets,
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
