package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	domaccount "github.com/arimulian/Revamp-Codeid-sales/internal/domain/account"
	domorder "github.com/arimulian/Revamp-Codeid-sales/internal/domain/order"
	domuser "github.com/arimulian/Revamp-Codeid-sales/internal/domain/user"
	"github.com/arimulian/Revamp-Codeid-sales/internal/infra/metrics"
	"github.com/arimulian/Revamp-Codeid-sales/internal/infra/persistence/memory"
	"github.com/arimulian/Revamp-Codeid-sales/internal/infra/security"
	cartuc "github.com/arimulian/Revamp-Codeid-sales/internal/usecase/cart"
	checkoutuc "github.com/arimulian/Revamp-Codeid-sales/internal/usecase/checkout"
	ledgeruc "github.com/arimulian/Revamp-Codeid-sales/internal/usecase/ledger"
	orderuc "github.com/arimulian/Revamp-Codeid-sales/internal/usecase/order"
)

const (
	demoAccount    = "1234567890"
	blockedAccount = "5555"
	demoPayment    = "TRPA-0001"
)

type testEnv struct {
	store  *memory.Store
	router chi.Router
}

func setupAPI(t *testing.T, configure ...func(*Dependencies)) *testEnv {
	t.Helper()

	store := memory.NewStore()
	memory.SeedDemo(store)
	store.AddUser(domuser.User{ID: 2, Name: "sari"})
	store.AddAccount(domaccount.Account{
		Number:  blockedAccount,
		Holder:  domaccount.Holder{UserID: 2, Name: "sari"},
		Status:  domaccount.StatusBlocked,
		Balance: 900000,
	})

	refs := memory.NewReferenceRepository(store)
	orders := memory.NewOrderRepository(store)
	cartRepo := memory.NewCartRepository(store)
	settler := memory.NewSettler(store)
	numbers := domorder.NewCounterGenerator(nil)
	ledgerSvc := ledgeruc.NewService(memory.NewAccountRepository(store))

	deps := Dependencies{
		CheckoutService: checkoutuc.NewService(checkoutuc.Dependencies{
			Accounts:   ledgerSvc,
			Cart:       cartRepo,
			References: refs,
			Orders:     orders,
			Settler:    settler,
			Numbers:    numbers,
		}),
		OrderService:  orderuc.NewService(orders, refs, settler, numbers, nil, nil, ""),
		CartService:   cartuc.NewService(cartRepo, memory.NewProgramRepository(store), memory.NewUserRepository(store), nil),
		LedgerService: ledgerSvc,
	}
	for _, fn := range configure {
		fn(&deps)
	}

	return &testEnv{store: store, router: NewAPI(deps).Router()}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (e *testEnv) addToCart(t *testing.T, userID, programID, quantity int64, headers ...string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/cart", map[string]any{
		"programId":    programID,
		"caitQuantity": quantity,
		"userId":       userID,
	}, headers...)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestHealth(t *testing.T) {
	env := setupAPI(t)

	rec := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/health/db", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthDB_PingFailure(t *testing.T) {
	env := setupAPI(t, func(d *Dependencies) {
		d.PingDB = func(ctx context.Context) error { return errors.New("connection refused") }
	})

	rec := env.do(t, http.MethodGet, "/health/db", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotContains(t, rec.Body.String(), "refused")
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	env := setupAPI(t, func(d *Dependencies) { d.Metrics = m })

	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health", nil).Code)

	rec := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `sales_http_requests_total{route="GET /health",status="200"} 1`)
}

func TestHandleDomainError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"insufficient funds", fmt.Errorf("account number: 1: %w", domaccount.ErrInsufficientFunds), http.StatusBadRequest, "saldo is not enough"},
		{"not registered", domorder.ErrAccountNotRegistered, http.StatusInternalServerError, "not registered"},
		{"blocked", domaccount.ErrAccountBlocked, http.StatusInternalServerError, "blocked"},
		{"timeout", fmt.Errorf("%w: in state debiting", domorder.ErrCheckoutTimeout), http.StatusGatewayTimeout, "timed out"},
		{"order not found", domorder.ErrOrderNotFound, http.StatusNotFound, "order not found"},
		{"cancelled", domorder.ErrOrderCancelled, http.StatusConflict, "cancelled"},
		{"key reused", domorder.ErrIdempotencyKeyReused, http.StatusConflict, "another request"},
		{"forbidden", domuser.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"infrastructure", errors.New("dial tcp 10.0.0.1:3306: connection refused"), http.StatusInternalServerError, "internal server error"},
	}

	a := NewAPI(Dependencies{})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			a.handleDomainError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)

			require.Equal(t, tc.status, rec.Code)
			require.Contains(t, rec.Body.String(), tc.body)
			require.NotContains(t, rec.Body.String(), "10.0.0.1")
		})
	}
}

func TestAuthGate(t *testing.T) {
	tokens := security.NewJWTService("test-secret", time.Hour)
	env := setupAPI(t, func(d *Dependencies) { d.TokenService = tokens })

	demoToken, err := tokens.GenerateToken(&domuser.User{ID: 1, Name: "demo"})
	require.NoError(t, err)
	bearer := []string{"Authorization", "Bearer " + demoToken}
	var number string

	t.Run("missing token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/cart", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/cart", nil, "Authorization", "Bearer nope")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("acting for another user", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/order/create", map[string]any{
			"user": 2, "trpaCodeNumber": demoPayment,
		}, bearer...)
		require.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/cart?userentityid=2", nil, bearer...)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("own requests pass", func(t *testing.T) {
		env.addToCart(t, 1, 1, 1, bearer...)

		rec := env.do(t, http.MethodGet, "/api/cart", nil, bearer...)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, decode(t, rec)["data"], 1)

		rec = env.do(t, http.MethodPost, "/api/order/create", map[string]any{
			"user": 1, "trpaCodeNumber": demoPayment,
		}, bearer...)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		number, _ = decode(t, rec)["orderNumber"].(string)
		require.NotEmpty(t, number)

		rec = env.do(t, http.MethodGet, "/api/order?orderNumber="+number, nil, bearer...)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("orders of another user", func(t *testing.T) {
		sariToken, err := tokens.GenerateToken(&domuser.User{ID: 2, Name: "sari"})
		require.NoError(t, err)
		sari := []string{"Authorization", "Bearer " + sariToken}

		rec := env.do(t, http.MethodGet, "/api/order?orderNumber="+number, nil, sari...)
		require.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(t, http.MethodPost, "/api/order/cancel", map[string]any{"orderNumber": number}, sari...)
		require.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/order?orderNumber="+number, nil, bearer...)
		require.Equal(t, http.StatusOK, rec.Code, "order is still open")
	})

	t.Run("fintech is not gated", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/fintech?accountNumber="+demoAccount, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
