package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/application/usecase"
	"github.com/jhoicas/bodegas-api/internal/infrastructure/cache"
	"github.com/jhoicas/bodegas-api/internal/infrastructure/catalog"
	infranats "github.com/jhoicas/bodegas-api/internal/infrastructure/nats"
	"github.com/jhoicas/bodegas-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/bodegas-api/internal/interfaces/http"
	"github.com/jhoicas/bodegas-api/pkg/config"
	"github.com/jhoicas/bodegas-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	warehouseRepo := postgres.NewWarehouseRepository(pool)
	invRepo := postgres.NewInventoryRepository(pool)
	logRepo := postgres.NewStockLogRepository(pool)
	orderRepo := postgres.NewOrderStateRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Cache Redis de la bodega primaria (opcional)
	var primaryCache usecase.PrimaryCache
	rdb, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis no disponible; se continúa sin cache")
	} else if rdb != nil {
		defer rdb.Close()
		primaryCache = cache.NewWarehouseCache(rdb, time.Duration(cfg.Redis.TTLSecs)*time.Second)
	}

	// Cliente del catálogo externo (opcional)
	var catalogSvc inventory.CatalogService
	if client := catalog.NewClient(cfg.Catalog); client != nil {
		catalogSvc = client
	}

	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo, primaryCache, log)
	ledgerUC := inventory.NewLedgerUseCase(txRunner, warehouseRepo, invRepo, catalogSvc, log)
	transferUC := inventory.NewTransferUseCase(txRunner, warehouseRepo, catalogSvc, log)
	stockLogUC := inventory.NewStockLogUseCase(logRepo, invRepo)
	orderUC := inventory.NewOrderUseCase(txRunner, warehouseRepo, orderRepo, catalogSvc, log)

	// La bodega primaria debe existir antes de servir tráfico.
	if _, err := warehouseUC.EnsurePrimary(ctx, cfg.Warehouse.PrimaryName, cfg.Warehouse.PrimarySlug); err != nil {
		log.Fatal().Err(err).Msg("inicializar bodega primaria")
	}

	// Listener NATS de eventos de pedidos (opcional)
	natsConn, err := infranats.Connect(cfg.NATS, cfg.App.Name)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a NATS")
	}
	if natsConn != nil {
		defer natsConn.Close()
		listener := infranats.NewOrderListener(natsConn, orderUC, cfg.NATS, log.Component("nats"))
		if err := listener.Start(); err != nil {
			log.Fatal().Err(err).Msg("arrancar listener de pedidos")
		}
		defer listener.Close()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if sw := httpRouter.SwaggerUI("./docs/swagger.json", cfg.App.Name); sw != nil {
		app.Use(sw)
	} else {
		log.Warn().Msg("docs/swagger.json no encontrado; Swagger UI deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		WarehouseUC: warehouseUC,
		LedgerUC:    ledgerUC,
		TransferUC:  transferUC,
		StockLogUC:  stockLogUC,
		OrderUC:     orderUC,
		JWTSecret:   cfg.JWT.Secret,
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
