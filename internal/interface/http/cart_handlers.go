package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

type addCartItemRequest struct {
	ProgramID int64 `json:"programId" validate:"required,gt=0"`
	Quantity  int64 `json:"caitQuantity" validate:"required,gt=0"`
	UserID    int64 `json:"userId" validate:"required,gt=0"`
}

func (a *API) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := actingAs(r, req.UserID); err != nil {
		a.handleDomainError(w, r, err)
		return
	}

	item, err := a.cartSvc.AddOrMerge(r.Context(), req.UserID, req.ProgramID, req.Quantity)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapCartItem(item))
}

func (a *API) handleListCart(w http.ResponseWriter, r *http.Request) {
	var userID *int64
	if raw := strings.TrimSpace(r.URL.Query().Get("userentityid")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, errors.New("userentityid must be a number"))
			return
		}
		if err := actingAs(r, id); err != nil {
			a.handleDomainError(w, r, err)
			return
		}
		userID = &id
	} else if user := getAuthUser(r.Context()); user != nil {
		// a gated caller only ever sees its own cart
		userID = &user.UserID
	}

	items, err := a.cartSvc.List(r.Context(), userID)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}

	resp := make([]map[string]any, 0, len(items))
	for _, item := range items {
		resp = append(resp, mapDetailedCartItem(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if user := getAuthUser(r.Context()); user != nil {
		err = a.cartSvc.RemoveOwned(r.Context(), id, user.UserID)
	} else {
		err = a.cartSvc.Remove(r.Context(), id)
	}
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
