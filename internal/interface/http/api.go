package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domaccount "github.com/arimulian/Revamp-Codeid-sales/internal/domain/account"
	domcart "github.com/arimulian/Revamp-Codeid-sales/internal/domain/cart"
	"github.com/arimulian/Revamp-Codeid-sales/internal/domain/money"
	domorder "github.com/arimulian/Revamp-Codeid-sales/internal/domain/order"
	domprogram "github.com/arimulian/Revamp-Codeid-sales/internal/domain/program"
	domref "github.com/arimulian/Revamp-Codeid-sales/internal/domain/reference"
	domuser "github.com/arimulian/Revamp-Codeid-sales/internal/domain/user"
	"github.com/arimulian/Revamp-Codeid-sales/internal/infra/logging"
	cartuc "github.com/arimulian/Revamp-Codeid-sales/internal/usecase/cart"
	checkoutuc "github.com/arimulian/Revamp-Codeid-sales/internal/usecase/checkout"
	ledgeruc "github.com/arimulian/Revamp-Codeid-sales/internal/usecase/ledger"
	orderuc "github.com/arimulian/Revamp-Codeid-sales/internal/usecase/order"
)

var errInternal = errors.New("internal server error")

type TokenService interface {
	ParseToken(token string) (*domuser.Claims, error)
}

type MetricsCollector interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

type API struct {
	checkoutSvc *checkoutuc.Service
	orderSvc    *orderuc.Service
	cartSvc     *cartuc.Service
	ledgerSvc   *ledgeruc.Service
	tokenSvc    TokenService
	metrics     MetricsCollector
	pingDB      func(ctx context.Context) error
	logger      *zap.Logger
	validator   *validator.Validate
}

type Dependencies struct {
	CheckoutService *checkoutuc.Service
	OrderService    *orderuc.Service
	CartService     *cartuc.Service
	LedgerService   *ledgeruc.Service
	// TokenService enables the bearer gate on order and cart routes.
	TokenService TokenService
	Metrics      MetricsCollector
	PingDB       func(ctx context.Context) error
	Logger       *zap.Logger
}

func NewAPI(deps Dependencies) *API {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		checkoutSvc: deps.CheckoutService,
		orderSvc:    deps.OrderService,
		cartSvc:     deps.CartService,
		ledgerSvc:   deps.LedgerService,
		tokenSvc:    deps.TokenService,
		metrics:     deps.Metrics,
		pingDB:      deps.PingDB,
		logger:      logger,
		validator:   validator.New(),
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.RequestLogger(a.logger))
	r.Use(chimw.Recoverer)
	if a.metrics != nil {
		r.Use(a.metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", a.metrics.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/db", a.handleHealthDB)

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.AllowContentType("application/json", "text/plain"))

		r.Route("/fintech", func(fr chi.Router) {
			fr.Get("/", a.handleInquireAccount)
			fr.Post("/verify", a.handleVerifyAccount)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(a.authMiddleware)

			pr.Route("/order", func(or chi.Router) {
				or.Get("/", a.handleFindOrder)
				or.Get("/test", a.handleNextOrderNumber)
				or.Post("/create", a.handleCreateOrder)
				or.Post("/cancel", a.handleCancelOrder)
			})

			pr.Route("/cart", func(cr chi.Router) {
				cr.Get("/", a.handleListCart)
				cr.Post("/", a.handleAddCartItem)
				cr.Delete("/{id}", a.handleRemoveCartItem)
			})
		})
	})

	return r
}

func (a *API) handleHealthDB(w http.ResponseWriter, r *http.Request) {
	if a.pingDB == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.pingDB(ctx); err != nil {
		a.logger.Error("database ping failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) decodeAndValidate(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return a.validator.Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func parseIDParam(r *http.Request, key string) (int64, error) {
	idStr := chi.URLParam(r, key)
	return strconv.ParseInt(idStr, 10, 64)
}

func mapOrder(o *domorder.Order) map[string]any {
	resp := map[string]any{
		"id":            o.ID,
		"orderNumber":   o.Number,
		"userId":        o.UserID,
		"orderDate":     o.OrderDate,
		"subtotal":      o.Subtotal,
		"accountNumber": o.AccountNumber,
		"paymentCode":   o.PaymentCode,
		"status":        o.Status.Name,
	}
	if o.ReferenceNumber != "" {
		resp["referenceNumber"] = o.ReferenceNumber
	}
	return resp
}

func mapCartItem(item *domcart.Item) map[string]any {
	return map[string]any{
		"id":           item.ID,
		"userId":       item.UserID,
		"programId":    item.ProgramID,
		"caitQuantity": item.Quantity,
		"unitPrice":    money.Format(item.UnitPrice),
		"modifiedDate": item.ModifiedAt,
	}
}

func mapDetailedCartItem(item domcart.DetailedItem) map[string]any {
	resp := mapCartItem(&item.Item)
	resp["programTitle"] = item.ProgramTitle
	resp["userName"] = item.UserName
	return resp
}

// handleDomainError maps business failures to their status codes. Anything
// unrecognised is logged and hidden behind a generic message.
func (a *API) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domorder.ErrCheckoutTimeout),
		errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, err)
	case errors.Is(err, domaccount.ErrInsufficientFunds),
		errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, domcart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, err)
	case errors.Is(err, domorder.ErrOrderNotFound),
		errors.Is(err, domcart.ErrCartItemNotFound),
		errors.Is(err, domprogram.ErrProgramNotFound),
		errors.Is(err, domuser.ErrUserNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, domorder.ErrOrderCancelled),
		errors.Is(err, domorder.ErrIdempotencyKeyReused):
		respondError(w, http.StatusConflict, err)
	case errors.Is(err, domuser.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, err)
	case errors.Is(err, domuser.ErrForbidden):
		respondError(w, http.StatusForbidden, err)
	case errors.Is(err, domorder.ErrAccountNotRegistered),
		errors.Is(err, domref.ErrPaymentMethodNotFound),
		errors.Is(err, domref.ErrStatusNotFound),
		errors.Is(err, domaccount.ErrAccountInvalid),
		errors.Is(err, domaccount.ErrAccountInactive),
		errors.Is(err, domaccount.ErrAccountBlocked),
		errors.Is(err, domaccount.ErrAccountNotFound):
		// these keep the legacy 500 status with the business message
		respondError(w, http.StatusInternalServerError, err)
	default:
		a.logger.Error("request failed",
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, errInternal)
	}
}
