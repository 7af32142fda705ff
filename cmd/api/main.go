package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/inventario-ventas/internal/application/inventory"
	"github.com/jhoicas/inventario-ventas/internal/application/sales"
	"github.com/jhoicas/inventario-ventas/internal/application/usecase"
	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
	"github.com/jhoicas/inventario-ventas/internal/infrastructure/cache"
	"github.com/jhoicas/inventario-ventas/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ventas/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/inventario-ventas/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-ventas/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-ventas/internal/interfaces/http"
	"github.com/jhoicas/inventario-ventas/pkg/config"
	"github.com/jhoicas/inventario-ventas/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	rules, err := cfg.Settlement.Rules()
	if err != nil {
		log.Fatal().Err(err).Msg("reglas de liquidación")
	}

	ctx := context.Background()

	var txRunner repository.TxRunner
	var repos repository.Repos
	switch cfg.App.StoreDriver {
	case "memory":
		store := memory.NewStore()
		txRunner, repos = memory.NewTxRunner(store), store.Repos()
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.Migrate {
			if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		txRunner, repos = postgres.NewTxRunner(pool), postgres.NewRepos(pool)
	}

	// Redis es opcional: sin REDIS_ADDR los POST no se deduplican.
	var idem *cache.IdempotencyStore
	if cfg.Redis.Addr != "" {
		client, err := cache.New(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible, Idempotency-Key desactivado")
		} else {
			defer client.Close()
			idem = cache.NewIdempotencyStore(client, cfg.Redis.IdempotencyTTL)
		}
	}

	m := metrics.New()
	stockSvc := inventory.NewService(txRunner, repos, log.Component("stock"))
	ledger := inventory.NewLedger(txRunner, repos, stockSvc, m, log.Component("kardex"))
	engine := sales.NewEngine(txRunner, repos, ledger, rules, m, log.Component("ventas"))
	receiptUC := sales.NewReceiptUseCase(repos.Sales, repos.Products, infrapdf.NewReceiptGenerator(cfg.App.Issuer))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		Immutable:    true, // los parámetros de ruta llegan a los repositorios
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:   usecase.NewProductUseCase(repos.Products),
		WarehouseUC: usecase.NewWarehouseUseCase(repos.Warehouses),
		CustomerUC:  usecase.NewCustomerUseCase(repos.Customers),
		Inventory:   stockSvc,
		Ledger:      ledger,
		Sales:       engine,
		Receipt:     receiptUC,
		Idempotency: idem,
		Metrics:     m,
		JWTSecret:   cfg.JWT.Secret,
		SwaggerFile: cfg.App.SwaggerFile,
		AppName:     cfg.App.Name,
		Log:         log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
