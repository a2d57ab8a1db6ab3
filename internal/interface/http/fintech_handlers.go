package http

import (
	"errors"
	"net/http"
	"strings"
)

var errAccountNumberRequired = errors.New("accountNumber is required")

func (a *API) handleInquireAccount(w http.ResponseWriter, r *http.Request) {
	number := strings.TrimSpace(r.URL.Query().Get("accountNumber"))
	if number == "" {
		respondError(w, http.StatusBadRequest, errAccountNumberRequired)
		return
	}

	acct, err := a.ledgerSvc.Inquire(r.Context(), number)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"accountNumber": acct.Number,
		"accountName": map[string]any{
			"userEntityId": acct.Holder.UserID,
			"userName":     acct.Holder.Name,
		},
		"credit": acct.Balance,
	}})
}

func (a *API) handleVerifyAccount(w http.ResponseWriter, r *http.Request) {
	number := strings.TrimSpace(r.URL.Query().Get("accountNumber"))
	if number == "" {
		respondError(w, http.StatusBadRequest, errAccountNumberRequired)
		return
	}

	v, err := a.ledgerSvc.Verify(r.Context(), number)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": v.Message})
}
