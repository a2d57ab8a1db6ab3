package http

import (
	"errors"
	"net/http"
	"strings"

	domorder "github.com/arimulian/Revamp-Codeid-sales/internal/domain/order"
	checkoutuc "github.com/arimulian/Revamp-Codeid-sales/internal/usecase/checkout"
)

const idempotencyHeader = "Idempotency-Key"

type createOrderRequest struct {
	User           int64  `json:"user" validate:"required,gt=0"`
	TrpaCodeNumber string `json:"trpaCodeNumber" validate:"required"`
}

type cancelOrderRequest struct {
	OrderNumber string `json:"orderNumber" validate:"required"`
}

func (a *API) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := actingAs(r, req.User); err != nil {
		a.handleDomainError(w, r, err)
		return
	}

	res, err := a.checkoutSvc.Checkout(r.Context(), checkoutuc.Input{
		UserID:         req.User,
		PaymentCode:    req.TrpaCodeNumber,
		IdempotencyKey: r.Header.Get(idempotencyHeader),
	})
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}

	if res.Replayed {
		writeJSON(w, http.StatusOK, mapOrder(res.Order))
		return
	}
	resp := mapOrder(res.Order)
	resp["balance"] = res.NewBalance
	writeJSON(w, http.StatusCreated, resp)
}

func (a *API) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	var req cancelOrderRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var record *domorder.Order
	var err error
	if user := getAuthUser(r.Context()); user != nil {
		record, err = a.orderSvc.CancelOwned(r.Context(), req.OrderNumber, user.UserID)
	} else {
		record, err = a.orderSvc.Cancel(r.Context(), req.OrderNumber)
	}
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapOrder(record))
}

func (a *API) handleFindOrder(w http.ResponseWriter, r *http.Request) {
	number := strings.TrimSpace(r.URL.Query().Get("orderNumber"))
	if number == "" {
		respondError(w, http.StatusBadRequest, errors.New("orderNumber is required"))
		return
	}

	var summary *domorder.Summary
	var err error
	if user := getAuthUser(r.Context()); user != nil {
		summary, err = a.orderSvc.FindOrderOwned(r.Context(), number, user.UserID)
	} else {
		summary, err = a.orderSvc.FindOrder(r.Context(), number)
	}
	if errors.Is(err, domorder.ErrOrderCancelled) {
		// lookups of cancelled orders have always answered 500
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"AccountNumber":     summary.AccountNumber,
		"AccountName":       summary.AccountName,
		"Credit":            summary.Credit,
		"TransactionNumber": summary.TransactionNumber,
	}})
}

func (a *API) handleNextOrderNumber(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"orderNumber": a.orderSvc.NextOrderNumber()})
}
