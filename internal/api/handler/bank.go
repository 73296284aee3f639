package handler

import (
	"net/http"

	"github.com/dojosmash/dojo-smash/internal/api/request"
	"github.com/dojosmash/dojo-smash/internal/api/response"
	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/services/bank"
)

// BankHandler handles bank and debt endpoints
type BankHandler struct {
	bank *bank.Service
}

// NewBankHandler creates a new bank handler
func NewBankHandler(bank *bank.Service) *BankHandler {
	return &BankHandler{bank: bank}
}

// Status handles GET /banco
func (h *BankHandler) Status(w http.ResponseWriter, r *http.Request) {
	account, err := h.bank.Status(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.BankFromModel(account))
}

// Pay handles POST /banco/pago
func (h *BankHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req request.PaymentRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if req.UsuarioID == "" {
		WriteError(w, r, NewInvalidRequestError("usuarioId is required"))
		return
	}

	receipt, err := h.bank.RecordPayment(r.Context(), model.UserID(req.UsuarioID), req.Monto, req.Descripcion)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.ReceiptFromService(receipt))
}

// History handles GET /banco/historial[?limit=]
func (h *BankHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	rows, err := h.bank.ListPayments(r.Context(), limit)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PaymentsFromService(rows))
}

// Debts handles GET /banco/usuarios
func (h *BankHandler) Debts(w http.ResponseWriter, r *http.Request) {
	rows, err := h.bank.ListDebts(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.DebtsFromService(rows))
}
