package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/ingressolabs/ticketsales/internal/core/domain"
	"github.com/ingressolabs/ticketsales/internal/core/services"
)

type TicketHandler struct {
	inv *services.InventoryService
}

func NewTicketHandler(inv *services.InventoryService) *TicketHandler {
	return &TicketHandler{inv: inv}
}

type provisionRequest struct {
	NumTickets int             `json:"num_tickets"`
	Price      decimal.Decimal `json:"price"`
}

func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	eventID, err := uuid.Parse(mux.Vars(r)["eventId"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	tickets, err := h.inv.ListByEvent(r.Context(), eventID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if tickets == nil {
		tickets = []domain.Ticket{}
	}

	json.NewEncoder(w).Encode(tickets)
}

func (h *TicketHandler) Provision(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	eventID, err := uuid.Parse(mux.Vars(r)["eventId"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req provisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	tickets, err := h.inv.Provision(r.Context(), eventID, req.NumTickets, req.Price)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"created": len(tickets),
		"tickets": tickets,
	})
}
