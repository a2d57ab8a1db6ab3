package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domaccount "github.com/arimulian/Revamp-Codeid-sales/internal/domain/account"
	domcart "github.com/arimulian/Revamp-Codeid-sales/internal/domain/cart"
	domorder "github.com/arimulian/Revamp-Codeid-sales/internal/domain/order"
	domprogram "github.com/arimulian/Revamp-Codeid-sales/internal/domain/program"
	domref "github.com/arimulian/Revamp-Codeid-sales/internal/domain/reference"
	domuser "github.com/arimulian/Revamp-Codeid-sales/internal/domain/user"
	"github.com/arimulian/Revamp-Codeid-sales/internal/config"
	"github.com/arimulian/Revamp-Codeid-sales/internal/infra/cache"
	"github.com/arimulian/Revamp-Codeid-sales/internal/infra/events"
	"github.com/arimulian/Revamp-Codeid-sales/internal/infra/logging"
	"github.com/arimulian/Revamp-Codeid-sales/internal/infra/metrics"
	"github.com/arimulian/Revamp-Codeid-sales/internal/infra/persistence/memory"
	"github.com/arimulian/Revamp-Codeid-sales/internal/infra/persistence/migrations"
	"github.com/arimulian/Revamp-Codeid-sales/internal/infra/persistence/mysql"
	"github.com/arimulian/Revamp-Codeid-sales/internal/infra/persistence/postgres"
	"github.com/arimulian/Revamp-Codeid-sales/internal/infra/security"
	apihttp "github.com/arimulian/Revamp-Codeid-sales/internal/interface/http"
	cartuc "github.com/arimulian/Revamp-Codeid-sales/internal/usecase/cart"
	checkoutuc "github.com/arimulian/Revamp-Codeid-sales/internal/usecase/checkout"
	ledgeruc "github.com/arimulian/Revamp-Codeid-sales/internal/usecase/ledger"
	orderuc "github.com/arimulian/Revamp-Codeid-sales/internal/usecase/order"
)

type stores struct {
	users    domuser.Repository
	programs domprogram.Repository
	refs     domref.Repository
	accounts domaccount.Repository
	cart     domcart.Repository
	orders   domorder.Repository
	settler  domorder.Settler
	ping     func(ctx context.Context) error
	close    func()
}

type publisher interface {
	Publish(ctx context.Context, e domorder.Event) error
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	var cartCache cartuc.Cache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, cart cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			cartCache = cache.NewRedisCartCache(client, cfg.CartCacheTTL)
		}
	}

	var pub publisher = events.NopPublisher{}
	if brokers := events.ParseBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		pub = events.NewKafkaPublisher(brokers, cfg.KafkaOrderTopic, logger)
	}
	defer pub.Close()

	numbers, err := domorder.NewNumberGenerator(domorder.NumberPolicy(cfg.NumberPolicy), nil)
	if err != nil {
		return err
	}

	m := metrics.New()
	ledgerSvc := ledgeruc.NewService(st.accounts)
	checkoutSvc := checkoutuc.NewService(checkoutuc.Dependencies{
		Accounts:   ledgerSvc,
		Cart:       st.cart,
		References: st.refs,
		Orders:     st.orders,
		Settler:    st.settler,
		Numbers:    numbers,
		Events:     pub,
		Metrics:    m,
		Logger:     logger,
		Config: checkoutuc.Config{
			SalesModule: cfg.SalesModule,
			OpenStatus:  cfg.OpenStatus,
			Pricing:     checkoutuc.Pricing(cfg.Pricing),
			Timeout:     cfg.CheckoutTimeout,
		},
	})
	orderSvc := orderuc.NewService(st.orders, st.refs, st.settler, numbers, pub, logger, cfg.CancelledStatus)
	cartSvc := cartuc.NewService(st.cart, st.programs, st.users, cartCache)

	deps := apihttp.Dependencies{
		CheckoutService: checkoutSvc,
		OrderService:    orderSvc,
		CartService:     cartSvc,
		LedgerService:   ledgerSvc,
		Metrics:         m,
		PingDB:          st.ping,
		Logger:          logger,
	}
	if cfg.JWTSecret != "" {
		deps.TokenService = security.NewJWTService(cfg.JWTSecret, time.Hour)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apihttp.NewAPI(deps).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("driver", string(cfg.Driver)),
			zap.Bool("cart_cache", cartCache != nil),
			zap.Bool("auth_gate", deps.TokenService != nil))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (*stores, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		db, err := mysql.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("mysql: %w", err)
		}
		if cfg.Migrate {
			if err := migrations.UpMySQL(db); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &stores{
			users:    mysql.NewUserRepository(db),
			programs: mysql.NewProgramRepository(db),
			refs:     mysql.NewReferenceRepository(db),
			accounts: mysql.NewAccountRepository(db),
			cart:     mysql.NewCartRepository(db),
			orders:   mysql.NewOrderRepository(db),
			settler:  mysql.NewSettler(db),
			ping:     db.PingContext,
			close:    func() { _ = db.Close() },
		}, nil

	case config.DriverPostgres:
		pool, err := postgres.Open(ctx, cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if cfg.Migrate {
			sqlDB := stdlib.OpenDBFromPool(pool)
			err := migrations.UpPostgres(sqlDB)
			_ = sqlDB.Close()
			if err != nil {
				pool.Close()
				return nil, err
			}
		}
		return &stores{
			users:    postgres.NewUserRepository(pool),
			programs: postgres.NewProgramRepository(pool),
			refs:     postgres.NewReferenceRepository(pool),
			accounts: postgres.NewAccountRepository(pool),
			cart:     postgres.NewCartRepository(pool),
			orders:   postgres.NewOrderRepository(pool),
			settler:  postgres.NewSettler(pool),
			ping:     pool.Ping,
			close:    pool.Close,
		}, nil

	default:
		logger.Warn("using the in-memory store with demo data")
		s := memory.NewStore()
		memory.SeedDemo(s)
		return &stores{
			users:    memory.NewUserRepository(s),
			programs: memory.NewProgramRepository(s),
			refs:     memory.NewReferenceRepository(s),
			accounts: memory.NewAccountRepository(s),
			cart:     memory.NewCartRepository(s),
			orders:   memory.NewOrderRepository(s),
			settler:  memory.NewSettler(s),
			ping:     func(context.Context) error { return nil },
			close:    func() {},
		}, nil
	}
}
